package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/f-str/radishmq/internal/broker"
)

// handler groups the Broker API behind spec §6's HTTP surface. All path
// parameters for a single request (e.g. both {name} and {id}) are read
// off the one chi.RouteContext via chi.URLParam — the combined
// path-parameter extraction spec §9 calls for, naturally satisfied by
// chi's route tree rather than two independent extractors.
type handler struct {
	broker *broker.Broker
	logger *slog.Logger
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// readyz is a liveness/readiness split grounded on the teacher's
// modules/eventbus health-check pattern, simplified: this process has no
// external dependency check cheap enough to run per-request beyond "is
// the broker wired", so readiness and health currently coincide.
func (h *handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.broker == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type createTopicRequest struct {
	Name string `json:"name"`
}

type publisherRequest struct {
	Publisher string `json:"publisher"`
}

type subscriberRequest struct {
	Subscriber string `json:"subscriber"`
}

type publishMessageRequest struct {
	Data []broker.Payload `json:"data"`
}

type newDataResponse struct {
	NewData bool `json:"new_data"`
}

type getDataResponse struct {
	Data []broker.Payload `json:"data"`
}

type newTaskResponse struct {
	NewTasks bool `json:"new_tasks"`
}

// --- message topics ---------------------------------------------------

func (h *handler) listMessageTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.broker.GetAllMessageTopics(r.Context()))
}

func (h *handler) getMessageTopic(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	model, ok := h.broker.GetMessageTopic(r.Context(), name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (h *handler) createMessageTopic(w http.ResponseWriter, r *http.Request) {
	var req createTopicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	model, err := h.broker.CreateMessageTopic(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, broker.ErrTopicAlreadyExists) {
			w.WriteHeader(http.StatusConflict)
			return
		}
		h.logger.Error("create message topic", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, model)
}

func (h *handler) deleteMessageTopic(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.broker.DeleteMessageTopic(r.Context(), name); err != nil {
		if errors.Is(err, broker.ErrTopicNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Error("delete message topic", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) addMessageTopicPublisher(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req publisherRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.broker.AddMessageTopicPublisher(r.Context(), name, req.Publisher)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) removeMessageTopicPublisher(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	h.broker.RemoveMessageTopicPublisher(r.Context(), name, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) publishMessageTopic(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	var req publishMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.broker.PublishToMessageTopic(r.Context(), name, id, req.Data)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) addMessageTopicSubscriber(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req subscriberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.broker.AddMessageTopicSubscriber(r.Context(), name, req.Subscriber)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) removeMessageTopicSubscriber(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	h.broker.RemoveMessageTopicSubscriber(r.Context(), name, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) isNewDataForSubscriber(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	newData, found := h.broker.IsNewDataForSubscriber(r.Context(), name, id)
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newDataResponse{NewData: newData})
}

func (h *handler) getDataForSubscriber(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	data, found := h.broker.GetNewDataForSubscriber(r.Context(), name, id)
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, getDataResponse{Data: data})
}

// --- task topics --------------------------------------------------------

func (h *handler) listTaskTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.broker.GetAllTaskTopics(r.Context()))
}

func (h *handler) getTaskTopic(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	model, ok := h.broker.GetTaskTopic(r.Context(), name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (h *handler) createTaskTopic(w http.ResponseWriter, r *http.Request) {
	var req createTopicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	model, err := h.broker.CreateTaskTopic(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, broker.ErrTopicAlreadyExists) {
			w.WriteHeader(http.StatusConflict)
			return
		}
		h.logger.Error("create task topic", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, model)
}

func (h *handler) deleteTaskTopic(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.broker.DeleteTaskTopic(r.Context(), name); err != nil {
		if errors.Is(err, broker.ErrTopicNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Error("delete task topic", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) addTaskTopicPublisher(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req publisherRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.broker.AddTaskTopicPublisher(r.Context(), name, req.Publisher)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) removeTaskTopicPublisher(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	h.broker.RemoveTaskTopicPublisher(r.Context(), name, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) publishTaskTopic(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	var req publishMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.broker.PublishToTaskTopic(r.Context(), name, id, req.Data)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) addTaskTopicSubscriber(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req subscriberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.broker.AddTaskTopicSubscriber(r.Context(), name, req.Subscriber)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) removeTaskTopicSubscriber(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	h.broker.RemoveTaskTopicSubscriber(r.Context(), name, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) isThereATaskForSubscriber(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	newTasks, found := h.broker.IsThereATaskForSubscriber(r.Context(), name)
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newTaskResponse{NewTasks: newTasks})
}

func (h *handler) getTaskForSubscriber(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	payload, delivered, found := h.broker.GetNewTaskForSubscriber(r.Context(), name, id)
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if !delivered {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
