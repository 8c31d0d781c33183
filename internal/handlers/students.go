package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/VladimirMonin/students-api-411/internal/app"
	"github.com/VladimirMonin/students-api-411/internal/metrics"
	"github.com/VladimirMonin/students-api-411/internal/models"
	"github.com/VladimirMonin/students-api-411/internal/store"
)

type StudentHandler struct {
	service *app.Service
}

func NewStudentHandler(service *app.Service) *StudentHandler {
	return &StudentHandler{
		service: service,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

// writeError shapes every failure as {"error": ...}; detail is either a
// string or a []models.FieldError list.
func writeError(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"error": detail})
}

func parseStudentID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// groupName resolves the display name for a student's group reference.
func (h *StudentHandler) groupName(student *models.Student) (*string, error) {
	if student.GroupID == nil {
		return nil, nil
	}

	group, err := h.service.Store.GetGroupByID(*student.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, nil
	}
	return &group.GroupName, nil
}

// HandleList serves GET /api/students with optional param/order/filter
// query parameters. A filter naming an unknown group is a 404, not an
// empty list.
func (h *StudentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	param := r.URL.Query().Get("param")
	order := r.URL.Query().Get("order")
	if order == "" {
		order = "asc"
	}
	filter := r.URL.Query().Get("filter")

	if param != "" && !store.IsSortable(param) {
		writeError(w, http.StatusBadRequest, "Некорректный параметр сортировки")
		return
	}

	var groupID *int64
	if filter != "" {
		group, err := h.service.Store.GetGroupByName(filter)
		if err != nil {
			logger.Error.Printf("Failed to resolve group filter %q: %v", filter, err)
			writeError(w, http.StatusInternalServerError, "Не удалось получить список студентов")
			return
		}
		if group == nil {
			writeError(w, http.StatusNotFound, "Группа не найдена")
			return
		}
		groupID = &group.ID
	}

	rows, err := h.service.Store.ListStudents(groupID, param, order)
	if err != nil {
		logger.Error.Printf("Failed to list students: %v", err)
		writeError(w, http.StatusInternalServerError, "Не удалось получить список студентов")
		return
	}

	studentsData := make([]models.StudentResponse, 0, len(rows))
	for i := range rows {
		studentsData = append(studentsData, rows[i].Response())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"students": studentsData,
	})
}

// HandleGet serves GET /api/students/{id}.
func (h *StudentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseStudentID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Некорректный идентификатор студента")
		return
	}

	student, err := h.service.Store.GetStudent(id)
	if err != nil {
		logger.Error.Printf("Failed to get student %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Не удалось получить данные студента")
		return
	}
	if student == nil {
		writeError(w, http.StatusNotFound, "Студент не найден")
		return
	}

	groupName, err := h.groupName(student)
	if err != nil {
		logger.Error.Printf("Failed to resolve group for student %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Не удалось получить данные студента")
		return
	}

	writeJSON(w, http.StatusOK, student.Response(groupName))
}

// HandleCreate serves POST /api/students. The body is validated into a
// creation intent, then the group name is resolved exactly once, here.
func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Не удалось прочитать тело запроса")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, "Нет данных для создания студента")
		return
	}

	var intent models.StudentCreate
	if err := json.Unmarshal(body, &intent); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный JSON в теле запроса")
		return
	}

	if err := intent.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, models.DescribeValidationErrors(err))
		return
	}

	group, err := h.service.Store.GetGroupByName(intent.Group)
	if err != nil {
		logger.Error.Printf("Failed to resolve group %q: %v", intent.Group, err)
		writeError(w, http.StatusInternalServerError, "Не удалось сохранить студента")
		return
	}
	if group == nil {
		writeError(w, http.StatusNotFound, "Группа не найдена")
		return
	}

	student := intent.Student(group.ID)
	if err := h.service.Store.CreateStudent(student); err != nil {
		logger.Error.Printf("Failed to create student: %v", err)
		writeError(w, http.StatusInternalServerError, "Не удалось сохранить студента")
		return
	}

	metrics.StudentMutationsTotal.WithLabelValues("create").Inc()

	writeJSON(w, http.StatusCreated, student.Response(&group.GroupName))
}

// HandleUpdate serves PUT /api/students/{id}. Only fields present in the
// body change; a supplied group name must resolve before assignment.
func (h *StudentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseStudentID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Некорректный идентификатор студента")
		return
	}

	student, err := h.service.Store.GetStudent(id)
	if err != nil {
		logger.Error.Printf("Failed to get student %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Не удалось обновить студента")
		return
	}
	if student == nil {
		writeError(w, http.StatusNotFound, "Студент не найден")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Не удалось прочитать тело запроса")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, "Нет данных для обновления студента")
		return
	}

	var intent models.StudentUpdate
	if err := json.Unmarshal(body, &intent); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный JSON в теле запроса")
		return
	}

	if err := intent.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, models.DescribeValidationErrors(err))
		return
	}

	var groupName *string
	if intent.Group != nil {
		group, err := h.service.Store.GetGroupByName(*intent.Group)
		if err != nil {
			logger.Error.Printf("Failed to resolve group %q: %v", *intent.Group, err)
			writeError(w, http.StatusInternalServerError, "Не удалось обновить студента")
			return
		}
		if group == nil {
			writeError(w, http.StatusNotFound, "Группа не найдена")
			return
		}
		student.GroupID = &group.ID
		groupName = &group.GroupName
	}

	intent.Apply(student)

	if err := h.service.Store.UpdateStudent(student); err != nil {
		logger.Error.Printf("Failed to update student %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Не удалось обновить студента")
		return
	}

	if groupName == nil {
		groupName, err = h.groupName(student)
		if err != nil {
			logger.Error.Printf("Failed to resolve group for student %d: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Не удалось обновить студента")
			return
		}
	}

	metrics.StudentMutationsTotal.WithLabelValues("update").Inc()

	writeJSON(w, http.StatusOK, student.Response(groupName))
}

// HandleDelete serves DELETE /api/students/{id}. Deleting the same id
// twice succeeds once and 404s the second time.
func (h *StudentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseStudentID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Некорректный идентификатор студента")
		return
	}

	student, err := h.service.Store.GetStudent(id)
	if err != nil {
		logger.Error.Printf("Failed to get student %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Не удалось удалить студента")
		return
	}
	if student == nil {
		writeError(w, http.StatusNotFound, "Студент не найден")
		return
	}

	if err := h.service.Store.DeleteStudent(id); err != nil {
		logger.Error.Printf("Failed to delete student %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Не удалось удалить студента")
		return
	}

	metrics.StudentMutationsTotal.WithLabelValues("delete").Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Студент успешно удален",
	})
}
