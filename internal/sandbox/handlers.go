package sandbox

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/rs/zerolog"
)

// Handler serves the doctor API.
type Handler struct {
	store    Store
	fixtures *Fixtures
	logger   zerolog.Logger
}

// NewHandler serves the doctor API from store, with patients and appointments read from fixtures.
func NewHandler(store Store, fixtures *Fixtures, logger zerolog.Logger) *Handler {
	return &Handler{store: store, fixtures: fixtures, logger: logger}
}

// RegisterRoutes mounts the endpoints under g, which is expected to be /api/doctor.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/addPrescription", h.AddPrescription)
	g.POST("/addMedicine", h.AddMedicine)
	g.POST("/completPrescription", h.CompletePrescription)
	g.POST("/addMedicalInfo", h.AddMedicalInfo)

	g.POST("/filteringAppointmentsByDate", h.AppointmentsByDate)
	g.POST("/showAppointmentsByStatus", h.AppointmentsByStatus)
	g.POST("/showAppointmentsByType", h.AppointmentsByType)
	g.GET("/cancelAppointment", h.CancelAppointment)
	g.GET("/showpatientAppointments", h.PatientAppointments)
	g.GET("/showAppointmantResults", h.AppointmentResults)

	g.GET("/patientsRecord", h.PatientsRecord)
	g.POST("/searchPatient", h.SearchPatient)
	g.GET("/showPatientProfile", h.PatientProfile)

	g.GET("/profile", h.Profile)
	g.POST("/editProfile", h.EditProfile)
	g.GET("/availableWorkDays", h.AvailableWorkDays)
	g.GET("/showDoctorReviews", h.DoctorReviews)
}

func unprocessable(msg string) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, msg)
}

func required(field string) error {
	return unprocessable("The " + field + " field is required.")
}

// storeError maps store failures to responses.
func storeError(err error, what string) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return err
}

func queryInt(c echo.Context, name string, def int64) (int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}

func data(c echo.Context, status int, v any) error {
	return c.JSON(status, map[string]any{"data": v})
}

func (h *Handler) AddPrescription(c echo.Context) error {
	var req struct {
		PatientID int64 `json:"patient_id"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.PatientID <= 0 {
		return required("patient id")
	}

	p, err := h.store.CreatePrescription(c.Request().Context(), req.PatientID)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, p)
}

func (h *Handler) AddMedicine(c echo.Context) error {
	var m clinicapi.Medicine
	if err := c.Bind(&m); err != nil {
		return err
	}
	for _, f := range []struct{ name, value string }{
		{"name", m.Name},
		{"dose", m.Dose},
		{"frequency", m.Frequency},
		{"strength", m.Strength},
		{"until", m.Until},
		{"when to take", m.WhenToTake},
	} {
		if strings.TrimSpace(f.value) == "" {
			return required(f.name)
		}
	}
	if m.PrescriptionID <= 0 {
		return required("prescription id")
	}

	ctx := c.Request().Context()
	if _, err := h.store.GetPrescription(ctx, m.PrescriptionID); err != nil {
		return storeError(err, "prescription")
	}

	m.ID = 0
	out, err := h.store.AddMedicine(ctx, m)
	if err != nil {
		return storeError(err, "prescription")
	}
	return data(c, http.StatusCreated, out)
}

func (h *Handler) CompletePrescription(c echo.Context) error {
	var req struct {
		ID   int64  `json:"id"`
		Note string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.ID <= 0 {
		return required("id")
	}

	ctx := c.Request().Context()
	p, err := h.store.GetPrescription(ctx, req.ID)
	if err != nil {
		return storeError(err, "prescription")
	}
	if p.MedicineCount == 0 {
		return unprocessable("The prescription has no medicines.")
	}

	p, err = h.store.CompletePrescription(ctx, req.ID, req.Note)
	if err != nil {
		return storeError(err, "prescription")
	}
	return data(c, http.StatusOK, p)
}

func (h *Handler) AddMedicalInfo(c echo.Context) error {
	var info clinicapi.MedicalInfo
	if err := c.Bind(&info); err != nil {
		return err
	}
	for _, f := range []struct{ name, value string }{
		{"symptoms", info.Symptoms},
		{"diagnosis", info.Diagnosis},
		{"doctor note", info.DoctorNote},
	} {
		if strings.TrimSpace(f.value) == "" {
			return required(f.name)
		}
	}
	if info.PrescriptionID <= 0 {
		return required("prescription id")
	}
	if info.AppointmentID <= 0 {
		return required("appointment id")
	}

	ctx := c.Request().Context()
	p, err := h.store.GetPrescription(ctx, info.PrescriptionID)
	if err != nil {
		return storeError(err, "prescription")
	}
	if p.Status != clinicapi.StatusCompleted {
		return unprocessable("The prescription must be completed first.")
	}

	info.ID = 0
	out, err := h.store.AddMedicalInfo(ctx, info)
	if err != nil {
		return storeError(err, "prescription")
	}
	if err := h.fixtures.SetAppointmentStatus(info.AppointmentID, "visited"); err != nil {
		h.logger.Debug().Err(err).Msg("medical info for unknown appointment")
	}
	return data(c, http.StatusCreated, out)
}

type appointmentQuery struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Type   string `json:"type"`
}

func (h *Handler) appointments(c echo.Context, needStatus, needType bool) error {
	var q appointmentQuery
	if err := c.Bind(&q); err != nil {
		return err
	}
	if q.Date == "" {
		return required("date")
	}
	if needStatus && q.Status == "" {
		return required("status")
	}
	if needType && q.Type == "" {
		return required("type")
	}
	list := h.fixtures.Appointments(q.Date, q.Status, q.Type)
	if list == nil {
		list = []clinicapi.Appointment{}
	}
	return c.JSON(http.StatusOK, map[string]any{"appointments": list})
}

func (h *Handler) AppointmentsByDate(c echo.Context) error {
	return h.appointments(c, false, false)
}

func (h *Handler) AppointmentsByStatus(c echo.Context) error {
	return h.appointments(c, true, false)
}

func (h *Handler) AppointmentsByType(c echo.Context) error {
	return h.appointments(c, false, true)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	id, err := queryInt(c, "reservation_id", 0)
	if err != nil {
		return err
	}
	if id <= 0 {
		return required("reservation id")
	}
	a, ok := h.fixtures.Appointment(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if a.Status == "visited" {
		return unprocessable("A visited appointment cannot be cancelled.")
	}
	if err := h.fixtures.SetAppointmentStatus(id, "cancelled"); err != nil {
		return storeError(err, "appointment")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Appointment cancelled"})
}

func pageMeta(total, page, perPage int) clinicapi.Meta {
	return clinicapi.Meta{Total: total, CurrentPage: page, PerPage: perPage}
}

func (h *Handler) PatientAppointments(c echo.Context) error {
	patientID, err := queryInt(c, "patient_id", 0)
	if err != nil {
		return err
	}
	if patientID <= 0 {
		return required("patient id")
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size", 5)
	if err != nil {
		return err
	}
	list, total := h.fixtures.PatientAppointments(patientID, int(page), int(size))
	return c.JSON(http.StatusOK, map[string]any{
		"data": list,
		"meta": pageMeta(total, int(page), int(size)),
	})
}

func (h *Handler) AppointmentResults(c echo.Context) error {
	id, err := queryInt(c, "appointment_id", 0)
	if err != nil {
		return err
	}
	if id <= 0 {
		return required("appointment id")
	}

	ctx := c.Request().Context()
	info, err := h.store.MedicalInfoByAppointment(ctx, id)
	if err != nil {
		return storeError(err, "results")
	}
	p, err := h.store.GetPrescription(ctx, info.PrescriptionID)
	if err != nil {
		return storeError(err, "prescription")
	}
	medicines, err := h.store.Medicines(ctx, info.PrescriptionID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, map[string]any{
		"appointment_id":  info.AppointmentID,
		"prescription_id": info.PrescriptionID,
		"symptoms":        info.Symptoms,
		"diagnosis":       info.Diagnosis,
		"doctorNote":      info.DoctorNote,
		"patientNote":     info.PatientNote,
		"note":            p.Note,
		"medicines":       medicines,
	})
}

func (h *Handler) PatientsRecord(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return err
	}
	perPage, err := queryInt(c, "per_page", 10)
	if err != nil {
		return err
	}
	list, total := h.fixtures.Patients(int(page), int(perPage))
	return c.JSON(http.StatusOK, map[string]any{
		"data": list,
		"meta": pageMeta(total, int(page), int(perPage)),
	})
}

func (h *Handler) SearchPatient(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Name) == "" {
		return required("name")
	}
	return c.JSON(http.StatusOK, map[string]any{"Patients": h.fixtures.SearchPatients(req.Name)})
}

func (h *Handler) PatientProfile(c echo.Context) error {
	id, err := queryInt(c, "patient_id", 0)
	if err != nil {
		return err
	}
	p, ok := h.fixtures.Patient(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	_, visits := h.fixtures.PatientAppointments(id, 1, 0)
	return data(c, http.StatusOK, map[string]any{
		"id":           p.ID,
		"first_name":   p.FirstName,
		"last_name":    p.LastName,
		"email":        p.Email,
		"phone":        p.Phone,
		"gender":       p.Gender,
		"birth_date":   p.BirthDate,
		"age":          p.Age,
		"appointments": visits,
	})
}

func (h *Handler) Profile(c echo.Context) error {
	return data(c, http.StatusOK, h.fixtures.Profile())
}

func (h *Handler) EditProfile(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "expected multipart form")
	}
	fields := map[string]string{}
	for k, v := range form.Value {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	if pw := fields["password"]; pw != "" {
		if pw != fields["password_confirmation"] {
			return unprocessable("The password confirmation does not match.")
		}
		if fields["old_password"] == "" {
			return required("old password")
		}
	}
	files := map[string]string{}
	for k, v := range form.File {
		if len(v) > 0 {
			files[k] = v[0].Filename
		}
	}
	return data(c, http.StatusOK, h.fixtures.UpdateProfile(fields, files))
}

func (h *Handler) AvailableWorkDays(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"days": h.fixtures.WorkDays()})
}

func (h *Handler) DoctorReviews(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"reviews": h.fixtures.Reviews()})
}

// HealthHandler reports whether the store answers. ping may be nil for the memory store.
func HealthHandler(store string, ping func(context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			if err := ping(ctx); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]any{
					"status": "unhealthy",
					"store":  store,
					"error":  err.Error(),
				})
			}
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status": "healthy",
			"store":  store,
		})
	}
}
