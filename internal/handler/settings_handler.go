package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/failedemails-report/internal/access"
	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"github.com/kursadbilgin/failedemails-report/internal/lang"
	"github.com/kursadbilgin/failedemails-report/internal/settings"
)

// SettingsPath is the admin settings page for this plugin.
const SettingsPath = "/admin/settings/" + settings.Plugin

type SettingsService interface {
	List(ctx context.Context) ([]settings.Value, error)
	Set(ctx context.Context, name string, raw string) (settings.Value, error)
}

type SettingsHandler struct {
	service SettingsService
	strings *lang.Strings
}

func NewSettingsHandler(svc SettingsService, strs *lang.Strings) (*SettingsHandler, error) {
	if svc == nil {
		return nil, fmt.Errorf("settings service is required")
	}
	return &SettingsHandler{service: svc, strings: strs}, nil
}

func RegisterSettingsRoutes(router fiber.Router, svc SettingsService, auth Authenticator, authHeader string, strs *lang.Strings) error {
	if auth == nil {
		return fmt.Errorf("authenticator is required")
	}
	h, err := NewSettingsHandler(svc, strs)
	if err != nil {
		return err
	}

	group := router.Group(SettingsPath, ViewerMiddleware(auth, authHeader), requireSiteAdmin)
	group.Get("/", h.ListSettings)
	group.Put("/:name", h.UpdateSetting)
	return nil
}

func requireSiteAdmin(c *fiber.Ctx) error {
	viewer, ok := viewerFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if err := access.RequireSiteAdmin(viewer); err != nil {
		return toHTTPError(err)
	}
	return c.Next()
}

type settingResponse struct {
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Default     int    `json:"default"`
	Value       int    `json:"value"`
}

type listSettingsResponse struct {
	Plugin   string            `json:"plugin"`
	Title    string            `json:"title"`
	Settings []settingResponse `json:"settings"`
}

type updateSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

func (h *SettingsHandler) ListSettings(c *fiber.Ctx) error {
	values, err := h.service.List(c.UserContext())
	if err != nil {
		return toHTTPError(err)
	}

	resp := listSettingsResponse{
		Plugin:   settings.Plugin,
		Title:    h.strings.Get(lang.FailedEmailsSettings),
		Settings: make([]settingResponse, 0, len(values)),
	}
	for _, v := range values {
		resp.Settings = append(resp.Settings, h.toSettingResponse(v))
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *SettingsHandler) UpdateSetting(c *fiber.Ctx) error {
	var req updateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Value) == 0 {
		return toHTTPError(fmt.Errorf("%w: value is required", domain.ErrValidation))
	}

	// Accept both "25" and 25.
	raw := strings.Trim(strings.TrimSpace(string(req.Value)), `"`)

	value, err := h.service.Set(c.UserContext(), c.Params("name"), raw)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(h.toSettingResponse(value))
}

func (h *SettingsHandler) toSettingResponse(v settings.Value) settingResponse {
	return settingResponse{
		Name:        v.Name,
		FullName:    v.FullName(),
		Label:       h.strings.Get(v.LabelKey),
		Description: h.strings.Get(v.DescriptionKey),
		Default:     v.Default,
		Value:       v.Value,
	}
}
