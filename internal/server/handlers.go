package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ankitsingh4634/taskify/internal/analytics"
	"github.com/ankitsingh4634/taskify/internal/auth"
	"github.com/ankitsingh4634/taskify/internal/dav"
	"github.com/ankitsingh4634/taskify/internal/model"
	"github.com/ankitsingh4634/taskify/internal/orchestrator"
)

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// multiValue accepts either a JSON string or an array of strings.
// Clients historically sent both shapes for contact emails and phones.
type multiValue []string

func (m *multiValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*m = values
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*m = nil
		return nil
	}
	*m = []string{single}
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}

	id, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, auth.ErrDuplicate) {
		writeJSON(w, http.StatusConflict, messageResponse{Message: "username or email already registered"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"userId":  id,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}

	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "invalid username or password"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "login failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
	})
}

type taskRequest struct {
	TaskID      int64  `json:"taskId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Status      string `json:"status"`
}

// taskInput parses the request timestamps. A missing timestamp is left
// zero for the orchestrator's required-field check.
func (req *taskRequest) taskInput(w http.ResponseWriter) (*orchestrator.TaskInput, bool) {
	in := &orchestrator.TaskInput{
		TaskID:      req.TaskID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.StartTime != "" {
		parsed, err := model.ParseTimestamp(req.StartTime)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid startTime"})
			return nil, false
		}
		in.StartTime = parsed
	}
	if req.EndTime != "" {
		parsed, err := model.ParseTimestamp(req.EndTime)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid endTime"})
			return nil, false
		}
		in.EndTime = parsed
	}
	return in, true
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request, userID int64) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}
	in, ok := req.taskInput(w)
	if !ok {
		return
	}

	id, err := s.tasks.Create(r.Context(), userID, in)
	if err != nil {
		s.writeOpError(w, "Failed to create task", err)
		return
	}

	s.broadcastChange(EventTaskUpdate, id, "created")
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Task created successfully",
		"taskId":  id,
	})
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request, userID int64) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}
	in, ok := req.taskInput(w)
	if !ok {
		return
	}

	noChanges, err := s.tasks.Update(r.Context(), userID, in)
	if err != nil {
		s.writeOpError(w, "Failed to update task", err)
		return
	}
	if noChanges {
		writeJSON(w, http.StatusOK, messageResponse{Message: "No changes made"})
		return
	}

	s.broadcastChange(EventTaskUpdate, in.TaskID, "updated")
	writeJSON(w, http.StatusOK, messageResponse{Message: "Task updated successfully"})
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request, userID int64) {
	taskID, ok := entityID(w, r, "taskId")
	if !ok {
		return
	}

	if err := s.tasks.Delete(r.Context(), userID, taskID); err != nil {
		s.writeOpError(w, "Failed to delete task", err)
		return
	}

	s.broadcastChange(EventTaskUpdate, taskID, "deleted")
	writeJSON(w, http.StatusOK, messageResponse{Message: "Task deleted successfully"})
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request, userID int64) {
	tasks, err := s.tasks.List(r.Context(), userID)
	if err != nil {
		s.writeOpError(w, "Failed to list tasks", err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

type contactRequest struct {
	ContactID    int64      `json:"contactId"`
	FullName     string     `json:"fullName"`
	Email        multiValue `json:"email"`
	Phone        multiValue `json:"phone"`
	Address      string     `json:"address"`
	Organization string     `json:"organization"`
	Title        string     `json:"title"`
}

func (req *contactRequest) contactInput() *orchestrator.ContactInput {
	return &orchestrator.ContactInput{
		ContactID:    req.ContactID,
		FullName:     req.FullName,
		Emails:       req.Email,
		Phones:       req.Phone,
		Address:      req.Address,
		Organization: req.Organization,
		Title:        req.Title,
	}
}

func (s *Server) handleContactCreate(w http.ResponseWriter, r *http.Request, userID int64) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}

	id, err := s.contacts.Create(r.Context(), userID, req.contactInput())
	if err != nil {
		s.writeOpError(w, "Failed to create contact", err)
		return
	}

	s.broadcastChange(EventContactUpdate, id, "created")
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Contact created successfully",
		"contactId": id,
	})
}

func (s *Server) handleContactUpdate(w http.ResponseWriter, r *http.Request, userID int64) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}

	noChanges, err := s.contacts.Update(r.Context(), userID, req.contactInput())
	if err != nil {
		s.writeOpError(w, "Failed to update contact", err)
		return
	}
	if noChanges {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.broadcastChange(EventContactUpdate, req.ContactID, "updated")
	writeJSON(w, http.StatusOK, messageResponse{Message: "Contact updated successfully"})
}

func (s *Server) handleContactDelete(w http.ResponseWriter, r *http.Request, userID int64) {
	contactID, ok := entityID(w, r, "contactId")
	if !ok {
		return
	}

	if err := s.contacts.Delete(r.Context(), userID, contactID); err != nil {
		s.writeOpError(w, "Failed to delete contact", err)
		return
	}

	s.broadcastChange(EventContactUpdate, contactID, "deleted")
	writeJSON(w, http.StatusOK, messageResponse{Message: "Contact deleted successfully"})
}

func (s *Server) handleContactList(w http.ResponseWriter, r *http.Request, userID int64) {
	contacts, err := s.contacts.List(r.Context(), userID)
	if err != nil {
		s.writeOpError(w, "Failed to list contacts", err)
		return
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request, userID int64) {
	scope, err := analytics.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
		return
	}

	snapshot, err := s.analytics.Snapshot(r.Context(), userID, scope)
	if err != nil {
		s.writeOpError(w, "Failed to compute analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.events.ClientCount(),
	})
}

// entityID reads an entity id from the query string or, failing that,
// the request body. Delete requests historically carried either shape.
func entityID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	if raw := r.URL.Query().Get(name); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid " + name})
			return 0, false
		}
		return id, true
	}

	var body map[string]int64
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
		if id := body[name]; id > 0 {
			return id, true
		}
	}
	writeJSON(w, http.StatusBadRequest, messageResponse{Message: name + " is required"})
	return 0, false
}

// writeOpError maps an orchestration error onto its HTTP status. Sync
// failures additionally carry the remote server's diagnostic text.
func (s *Server) writeOpError(w http.ResponseWriter, message string, err error) {
	status := orchestrator.HTTPStatus(err)
	resp := messageResponse{Message: message}

	var notFoundErr *orchestrator.NotFoundError
	var validationErr *orchestrator.ValidationError
	var remoteErr *dav.RemoteError
	switch {
	case errors.As(err, &validationErr):
		resp.Message = validationErr.Msg
	case errors.As(err, &notFoundErr):
		resp.Message = notFoundErr.Error()
	case errors.As(err, &remoteErr) && remoteErr.Body != "":
		resp.Error = remoteErr.Body
	}

	s.logger.Printf("%s: %v", message, err)
	writeJSON(w, status, resp)
}

// broadcastChange publishes the entity event plus a stats event, since
// any mutation can move the dashboard counts.
func (s *Server) broadcastChange(eventType EventType, id int64, action string) {
	s.events.Broadcast(eventType, EntityEventData{ID: id, Action: action})
	s.events.Broadcast(EventStats, nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
