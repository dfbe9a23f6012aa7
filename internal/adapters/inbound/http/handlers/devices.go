package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/architeacher/device-inventory/internal/domain/model"
	"github.com/architeacher/device-inventory/internal/usecases"
	"github.com/architeacher/device-inventory/internal/usecases/commands"
	"github.com/architeacher/device-inventory/internal/usecases/queries"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	BasePath = "/device/v1"

	paramID    = "id"
	paramBrand = "brand"
	paramState = "state"

	deviceStateTag = "device_state"
)

type DeviceHandler struct {
	app      *usecases.Application
	log      logger.Logger
	validate *validator.Validate
}

func NewDeviceHandler(app *usecases.Application, log logger.Logger) *DeviceHandler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)
	_ = validate.RegisterValidation(deviceStateTag, isDeviceState)

	return &DeviceHandler{
		app:      app,
		log:      log.Component("handlers"),
		validate: validate,
	}
}

// Routes mounts the device endpoints under BasePath.
func (h *DeviceHandler) Routes(r chi.Router) {
	r.Route(BasePath, func(r chi.Router) {
		r.Post("/", h.CreateDevice)
		r.Get("/", h.ListDevices)
		r.Patch("/", h.UpdateDevice)
		r.Get("/id/{id}", h.GetDevice)
		r.Delete("/id/{id}", h.DeleteDevice)
		r.Get("/brand/{brand}", h.ListDevicesByBrand)
		r.Get("/state/{state}", h.ListDevicesByState)
	})
}

func (h *DeviceHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, h.log, err)

		return
	}

	cmd, err := req.toCommand()
	if err != nil {
		writeError(w, r, h.log, err)

		return
	}

	device, err := h.app.Commands.CreateDevice.Handle(r.Context(), cmd)
	if err != nil {
		writeError(w, r, h.log, err)

		return
	}

	w.Header().Set("Location", BasePath+"/id/"+device.ID.String())
	writeJSONResponse(w, http.StatusCreated, toDeviceResponse(device))
}

func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseDeviceID(chi.URLParam(r, paramID))
	if err != nil {
		writeError(w, r, h.log, err)

		return
	}

	device, err := h.app.Queries.GetDevice.Execute(r.Context(), queries.GetDeviceQuery{ID: id})
	if err != nil {
		writeError(w, r, h.log, err)

		return
	}

	writeJSONResponse(w, http.StatusOK, toDeviceResponse(device))
}

func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	h.listDevices(w, r, queries.ListDevicesQuery{})
}

func (h *DeviceHandler) ListDevicesByBrand(w http.ResponseWriter, r *http.Request) {
	h.listDevices(w, r, queries.ListDevicesQuery{
		Brand: model.Some(pathParam(r, paramBrand)),
	})
}

func (h *DeviceHandler) ListDevicesByState(w http.ResponseWriter, r *http.Request) {
	h.listDevices(w, r, queries.ListDevicesQuery{
		State: model.Some(pathParam(r, paramState)),
	})
}

func (h *DeviceHandler) listDevices(w http.ResponseWriter, r *http.Request, query queries.ListDevicesQuery) {
	devices, err := h.app.Queries.ListDevices.Execute(r.Context(), query)
	if err != nil {
		writeError(w, r, h.log, err)

		return
	}

	writeJSONResponse(w, http.StatusOK, toDeviceListResponse(devices))
}

func (h *DeviceHandler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	var req updateDeviceRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, h.log, err)

		return
	}

	cmd, err := req.toCommand()
	if err != nil {
		writeError(w, r, h.log, err)

		return
	}

	device, err := h.app.Commands.UpdateDevice.Handle(r.Context(), cmd)
	if err != nil {
		writeError(w, r, h.log, err)

		return
	}

	writeJSONResponse(w, http.StatusOK, toDeviceResponse(device))
}

func (h *DeviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseDeviceID(chi.URLParam(r, paramID))
	if err != nil {
		writeError(w, r, h.log, err)

		return
	}

	if _, err := h.app.Commands.DeleteDevice.Handle(r.Context(), commands.DeleteDeviceCommand{ID: id}); err != nil {
		writeError(w, r, h.log, err)

		return
	}

	w.WriteHeader(http.StatusOK)
}

// decode reads a JSON body into dst and validates its struct tags.
func (h *DeviceHandler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidRequestBody
	}

	if err := h.validate.Struct(dst); err != nil {
		return toValidationErrors(err)
	}

	return nil
}

// pathParam returns the decoded value of a path segment. chi routes on
// RawPath when it is set, and only then hands back the escaped form.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}

	value, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}

	return value
}

func isDeviceState(fl validator.FieldLevel) bool {
	return model.State(fl.Field().String()).IsValid()
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}
