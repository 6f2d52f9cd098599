package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/services"
)

type WidgetHandler struct {
	businessService *services.BusinessService
	publicURL       string
}

func NewWidgetHandler(businessService *services.BusinessService, publicURL string) *WidgetHandler {
	return &WidgetHandler{
		businessService: businessService,
		publicURL:       strings.TrimRight(publicURL, "/"),
	}
}

// loaderData holds JavaScript string literals, already quoted.
type loaderData struct {
	HostURL string
	Title   string
}

// jsString quotes s as a JSON string, which is also a valid JavaScript literal.
// json.Marshal escapes <, > and & so the value cannot close a script tag.
func jsString(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// The loader adds a floating launcher card to the host page and swaps it for a
// full-screen iframe; the iframe posts {type:"quantum-chat"} messages back.
var loaderTemplate = template.Must(template.New("loader").Parse(`(function () {
  'use strict';
  if (window.QuantumChatLoaded) return;
  window.QuantumChatLoaded = true;

  var host = {{.HostURL}};
  var title = {{.Title}};
  var css = '.qc-card{position:fixed;bottom:1.25rem;right:1.25rem;width:17rem;background:#2563eb;' +
    'border-radius:1.25rem;padding:1.5rem;cursor:pointer;z-index:999999;color:#fff;' +
    'font-family:system-ui,sans-serif;text-align:center}' +
    '.qc-title{font-weight:700;margin-bottom:.25rem}.qc-subtitle{font-size:.8125rem;opacity:.95}';

  function createCard() {
    var style = document.createElement('style');
    style.textContent = css;
    document.head.appendChild(style);

    var card = document.createElement('div');
    card.id = 'quantum-chat-card';
    card.className = 'qc-card';
    card.setAttribute('role', 'button');
    card.setAttribute('tabindex', '0');
    card.setAttribute('aria-label', 'Open AI chat assistant');
    card.innerHTML = '<div class="qc-title"></div><div class="qc-subtitle">Need help? Click to chat</div>';
    card.querySelector('.qc-title').textContent = title;
    card.addEventListener('click', function () { openPopup(card); });
    card.addEventListener('keydown', function (e) {
      if (e.key === 'Enter' || e.key === ' ') { e.preventDefault(); openPopup(card); }
    });
    document.body.appendChild(card);
  }

  function openPopup(card) {
    card.style.display = 'none';
    var iframe = document.createElement('iframe');
    iframe.id = 'quantum-chat-popup';
    iframe.src = host + '/widget?mode=simple&auto=true';
    iframe.allow = 'microphone; camera; autoplay; fullscreen';
    iframe.style.cssText = 'position:fixed;top:0;left:0;width:100vw;height:100vh;border:none;z-index:999999;background:transparent';
    document.body.appendChild(iframe);

    function onMessage(event) {
      var data = event.data || {};
      if (data.type !== 'quantum-chat') return;
      if (data.action === 'close' || data.action === 'minimize' || data.action === 'widget-minimized') {
        iframe.remove();
        window.removeEventListener('message', onMessage);
        card.style.display = 'block';
      }
    }
    window.addEventListener('message', onMessage);
  }

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', createCard);
  } else {
    createCard();
  }
})();
`))

// GetLoaderScript godoc
// @Summary Widget embed script
// @Description JavaScript snippet that host pages include to show the chat launcher
// @Tags Widget
// @Produce application/javascript
// @Success 200 {string} string
// @Router /widget-loader.js [get]
func (h *WidgetHandler) GetLoaderScript(c *fiber.Ctx) error {
	script, err := renderLoader(h.publicURL, h.businessService.Business().DisplayName("AI Assistant"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render loader",
		})
	}

	c.Set(fiber.HeaderContentType, "application/javascript; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.Send(script)
}

func renderLoader(hostURL, title string) ([]byte, error) {
	host, err := jsString(hostURL)
	if err != nil {
		return nil, err
	}
	name, err := jsString(title)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := loaderTemplate.Execute(&buf, loaderData{HostURL: host, Title: name}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetQRCode godoc
// @Summary Widget QR code
// @Description Base64 PNG QR code pointing at the hosted widget
// @Tags Widget
// @Produce json
// @Param size query int false "Image size in pixels" default(256)
// @Success 200 {object} map[string]string
// @Router /widget/qr [get]
func (h *WidgetHandler) GetQRCode(c *fiber.Ctx) error {
	size := c.QueryInt("size", 256)
	if size < 64 || size > 1024 {
		size = 256
	}

	target := h.publicURL + "/widget"
	png, err := qrcode.Encode(target, qrcode.Medium, size)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate QR code",
		})
	}

	return c.JSON(fiber.Map{
		"url":     target,
		"qr_code": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}
