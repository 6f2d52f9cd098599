package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/avatar"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/calendar"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/responder"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/services"
)

// 2024-06-05 is a Wednesday.
var fixedNow = time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, heygen *avatar.HeyGenClient) *fiber.App {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.NewChat(reg)
	b := &business.Config{ID: "acme", Name: "Acme Dental", Industry: "Healthcare"}
	b.Settings.WelcomeMessage = "Welcome to Acme Dental!"

	o := chat.NewOrchestrator(b, chat.Deps{Local: responder.New(nil), Metrics: m})
	chatService := services.NewChatService(o, chat.NewManager(0, m), nil)
	businessService := services.NewBusinessService(o, nil)

	calCfg := calendar.DefaultConfig(fixedNow)
	calCfg.Timezone = "UTC"
	scheduling := services.NewSchedulingService(calendar.New(calCfg).WithClock(func() time.Time { return fixedNow }), nil, businessService.Business)

	if heygen == nil {
		heygen = avatar.NewHeyGenClient("", "")
	}

	app := fiber.New()
	RegisterRoutes(app, Handlers{
		Chat:     NewChatHandler(chatService),
		Business: NewBusinessHandler(businessService),
		Calendar: NewCalendarHandler(scheduling),
		Avatar:   NewAvatarHandler(heygen),
		Widget:   NewWidgetHandler(businessService, "https://chat.acme.test/"),
		Health:   NewHealthHandler(chatService, reg),
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func startSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := do(t, app, http.MethodPost, "/chat/sessions", "")
	require.Equal(t, http.StatusCreated, status)
	id, _ := decode(t, body)["session_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", decode(t, body)["status"])

	status, body = do(t, app, http.MethodGet, "/stats/intents", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{}`, string(body))
}

func TestChatFlow(t *testing.T) {
	app := newTestApp(t, nil)
	id := startSession(t, app)

	status, body := do(t, app, http.MethodPost, "/chat/sessions/"+id+"/messages", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, status)
	reply := decode(t, body)
	assert.Equal(t, chat.RouteLocal, reply["route"])
	assert.Contains(t, reply["message"].(map[string]interface{})["content"], "Acme Dental")

	status, body = do(t, app, http.MethodGet, "/chat/sessions/"+id+"/messages", "")
	require.Equal(t, http.StatusOK, status)
	var msgs []chat.Message
	require.NoError(t, json.Unmarshal(body, &msgs))
	require.Len(t, msgs, 3)
	assert.Equal(t, chat.RoleAssistant, msgs[0].Role)

	status, _ = do(t, app, http.MethodDelete, "/chat/sessions/"+id+"/messages", "")
	require.Equal(t, http.StatusOK, status)
	_, body = do(t, app, http.MethodGet, "/chat/sessions/"+id+"/messages", "")
	assert.JSONEq(t, `[]`, string(body))

	status, body = do(t, app, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, decode(t, body)["localResponses"])

	status, body = do(t, app, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `chat_route_total{route="local"} 1`)
}

func TestChatErrors(t *testing.T) {
	app := newTestApp(t, nil)
	id := startSession(t, app)

	status, _ := do(t, app, http.MethodPost, "/chat/sessions/missing/messages", `{"message":"hello"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodPost, "/chat/sessions/"+id+"/messages", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodGet, "/chat/sessions/missing/messages", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body := do(t, app, http.MethodGet, "/chat/sessions/"+id+"/history", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestKnowledgeBase(t *testing.T) {
	app := newTestApp(t, nil)

	item := `{"id":"kb_parking","question":"Is there parking?","answer":"Free parking behind the clinic.","tags":["parking"]}`
	status, _ := do(t, app, http.MethodPost, "/knowledge-base", item)
	require.Equal(t, http.StatusCreated, status)

	status, _ = do(t, app, http.MethodPost, "/knowledge-base", item)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = do(t, app, http.MethodPost, "/knowledge-base", `{"question":"no answer"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodGet, "/knowledge-base/search", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := do(t, app, http.MethodGet, "/knowledge-base/search?q=parking", "")
	require.Equal(t, http.StatusOK, status)
	var hits []business.KnowledgeItem
	require.NoError(t, json.Unmarshal(body, &hits))
	require.NotEmpty(t, hits)
	assert.Equal(t, "kb_parking", hits[0].ID)

	status, body = do(t, app, http.MethodGet, "/knowledge-base", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "kb_parking")
}

func TestBusiness(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := do(t, app, http.MethodGet, "/business", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "Acme Dental")

	status, body = do(t, app, http.MethodGet, "/business/insights", "")
	require.Equal(t, http.StatusOK, status)
	ins := decode(t, body)
	assert.Contains(t, ins, "analysis")
	assert.Contains(t, ins, "readiness")
}

func TestCalendarSlots(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := do(t, app, http.MethodGet, "/calendar/slots?days=3", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"2024-06-05", "2024-06-06", "2024-06-07"}, decode(t, body)["dates"])

	status, body = do(t, app, http.MethodGet, "/calendar/slots?date=2024-06-06", "")
	require.Equal(t, http.StatusOK, status)
	slots := decode(t, body)["slots"].([]interface{})
	assert.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0])

	status, body = do(t, app, http.MethodGet, "/calendar/slots?date=2024-06-09", "")
	require.Equal(t, http.StatusOK, status)
	sunday := decode(t, body)
	assert.Equal(t, false, sunday["available"])
	assert.Empty(t, sunday["slots"])

	status, _ = do(t, app, http.MethodGet, "/calendar/slots?date=06/09/2024", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCalendarICS(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := do(t, app, http.MethodPost, "/calendar/ics",
		`{"title":"Consultation","startDate":"2024-06-06T09:00:00Z","endDate":"2024-06-06T09:30:00Z","location":"Clinic"}`)
	require.Equal(t, http.StatusOK, status)
	res := decode(t, body)
	assert.Contains(t, res["ics"], "BEGIN:VCALENDAR")
	assert.Contains(t, res["ics"], "DTSTART:20240606T090000Z")
	assert.Contains(t, res["links"].(map[string]interface{})["google"], "calendar.google.com")
	assert.Equal(t, false, res["emailed"])

	status, body = do(t, app, http.MethodPost, "/calendar/ics",
		`{"title":"Consultation","startDate":"2024-06-06T09:00:00Z","endDate":"2024-06-06T09:30:00Z","attendees":["visitor@example.com"],"notify":true}`)
	require.Equal(t, http.StatusOK, status)
	res = decode(t, body)
	assert.Equal(t, false, res["emailed"])
	assert.Equal(t, "no email provider configured", res["email_error"])

	status, _ = do(t, app, http.MethodPost, "/calendar/ics",
		`{"title":"Backwards","startDate":"2024-06-06T10:00:00Z","endDate":"2024-06-06T09:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAvatar(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		app := newTestApp(t, nil)
		status, _ := do(t, app, http.MethodPost, "/avatar/token", "")
		assert.Equal(t, http.StatusServiceUnavailable, status)
	})

	t.Run("proxies to heygen", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/v1/streaming.new":
				_, _ = w.Write([]byte(`{"code":100,"data":{"session_id":"sess_1","url":"wss://stream","access_token":"lk"}}`))
			default:
				_, _ = w.Write([]byte(`{"code":100,"data":null}`))
			}
		}))
		defer srv.Close()

		app := newTestApp(t, avatar.NewHeyGenClient("secret", srv.URL))
		status, body := do(t, app, http.MethodPost, "/avatar/sessions", "")
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "sess_1", decode(t, body)["session_id"])

		status, _ = do(t, app, http.MethodPost, "/avatar/speak", `{"session_id":"sess_1","text":"Hi there"}`)
		assert.Equal(t, http.StatusOK, status)

		status, _ = do(t, app, http.MethodPost, "/avatar/speak", `{"session_id":"sess_1"}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = do(t, app, http.MethodPost, "/avatar/stop", `{"session_id":"sess_1"}`)
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestWidgetEmbedding(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/widget-loader.js", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	script, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/javascript")
	assert.Contains(t, string(script), `"https://chat.acme.test"`)
	assert.Contains(t, string(script), `"Acme Dental"`)
	assert.Contains(t, string(script), "quantum-chat")

	status, body := do(t, app, http.MethodGet, "/widget/qr", "")
	require.Equal(t, http.StatusOK, status)
	qr := decode(t, body)
	assert.Equal(t, "https://chat.acme.test/widget", qr["url"])
	assert.True(t, strings.HasPrefix(qr["qr_code"].(string), "data:image/png;base64,"))
}

func TestLoaderScript_QuotesValuesAsJSON(t *testing.T) {
	title := "Zoë's \"Smile\" Café </script><b>🦷\u2028"
	script, err := renderLoader("https://chat.acme.test", title)
	require.NoError(t, err)
	src := string(script)

	assert.NotContains(t, src, "</script>")
	assert.NotContains(t, src, "\u2028", "raw line separator must be escaped")

	var line string
	for _, l := range strings.Split(src, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), "var title = ") {
			line = strings.TrimSpace(l)
		}
	}
	require.NotEmpty(t, line)
	literal := strings.TrimSuffix(strings.TrimPrefix(line, "var title = "), ";")

	var decoded string
	require.NoError(t, json.Unmarshal([]byte(literal), &decoded))
	assert.Equal(t, title, decoded)
	assert.Contains(t, literal, "🦷", "non-ASCII stays literal UTF-8")
}
