package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"broadcast-service/internal/dispatch"
	"broadcast-service/internal/domain"
	"broadcast-service/internal/middleware"
	"broadcast-service/internal/repository"
	"broadcast-service/internal/response"
)

// BroadcastHandler is the internal trigger surface: the main application
// calls one endpoint per domain mutation, this service loads the subject
// snapshot and fans the event out.
type BroadcastHandler struct {
	repo       repository.Repository
	dispatcher dispatch.EventDispatcher
	logger     *zap.Logger
}

func NewBroadcastHandler(repo repository.Repository, dispatcher dispatch.EventDispatcher, logger *zap.Logger) *BroadcastHandler {
	return &BroadcastHandler{repo: repo, dispatcher: dispatcher, logger: logger}
}

type messageSentRequest struct {
	MessageID int64 `json:"message_id"`
}

type chatCreatedRequest struct {
	ChatID int64 `json:"chat_id"`
}

type groupCreatedRequest struct {
	GroupID int64 `json:"group_id"`
}

type chatListUpdatedRequest struct {
	UserType string `json:"user_type"`
	UserID   int64  `json:"user_id"`
	ChatID   int64  `json:"chat_id"`
}

type reservationRequest struct {
	ReservationID int64 `json:"reservation_id"`
}

type favoriteToggledRequest struct {
	UserID int64                  `json:"user_id"`
	Extra  map[string]interface{} `json:"extra"`
}

type notificationRequest struct {
	NotificationID int64 `json:"notification_id"`
}

// MessageSent is immediate: a transport failure is surfaced so the caller
// can tell the sender real-time delivery did not go out. The message row
// itself is already durable on the caller's side either way.
func (h *BroadcastHandler) MessageSent(w http.ResponseWriter, r *http.Request) {
	var req messageSentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}

	msg, err := h.repo.GetMessage(r.Context(), req.MessageID)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}
	if msg.ChatID == nil {
		response.Error(w, http.StatusUnprocessableEntity, "message has no chat")
		return
	}

	subject := domain.Subject{Message: msg, Chat: msg.Chat}
	if err := h.dispatcher.Dispatch(r.Context(), domain.MessageSent, subject); err != nil {
		h.logDispatchError(r.Context(), domain.MessageSent, err)
		response.Error(w, http.StatusBadGateway, "broadcast failed")
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"event": domain.MessageSent.Name()})
}

func (h *BroadcastHandler) GroupMessageSent(w http.ResponseWriter, r *http.Request) {
	var req messageSentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}

	msg, err := h.repo.GetMessage(r.Context(), req.MessageID)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}
	if msg.GroupID == nil {
		response.Error(w, http.StatusUnprocessableEntity, "message has no group")
		return
	}

	subject := domain.Subject{Message: msg}
	if err := h.dispatcher.Dispatch(r.Context(), domain.GroupMessageSent, subject); err != nil {
		h.logDispatchError(r.Context(), domain.GroupMessageSent, err)
		response.Error(w, http.StatusBadGateway, "broadcast failed")
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"event": domain.GroupMessageSent.Name()})
}

func (h *BroadcastHandler) ChatCreated(w http.ResponseWriter, r *http.Request) {
	var req chatCreatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}

	chat, err := h.repo.GetChat(r.Context(), req.ChatID)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	h.deferred(w, r, domain.ChatCreated, domain.Subject{Chat: chat})
}

func (h *BroadcastHandler) ChatGroupCreated(w http.ResponseWriter, r *http.Request) {
	var req groupCreatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}

	group, err := h.repo.GetGroup(r.Context(), req.GroupID)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	h.deferred(w, r, domain.ChatGroupCreated, domain.Subject{Group: group})
}

func (h *BroadcastHandler) ChatListUpdated(w http.ResponseWriter, r *http.Request) {
	var req chatListUpdatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.UserType == "" {
		response.Error(w, http.StatusBadRequest, "user_type required")
		return
	}

	chat, err := h.repo.GetChat(r.Context(), req.ChatID)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	subject := domain.Subject{Chat: chat, UserType: req.UserType, UserID: req.UserID}
	h.deferred(w, r, domain.ChatListUpdated, subject)
}

func (h *BroadcastHandler) ReservationCreated(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}

	res, err := h.repo.GetReservation(r.Context(), req.ReservationID)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	h.deferred(w, r, domain.ReservationCreated, domain.Subject{Reservation: res})
}

func (h *BroadcastHandler) ReservationUpdated(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}

	res, err := h.repo.GetReservation(r.Context(), req.ReservationID)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	h.deferred(w, r, domain.ReservationUpdated, domain.Subject{Reservation: res})
}

func (h *BroadcastHandler) FavoriteToggled(w http.ResponseWriter, r *http.Request) {
	var req favoriteToggledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.UserID == 0 {
		response.Error(w, http.StatusBadRequest, "user_id required")
		return
	}

	subject := domain.Subject{UserID: req.UserID, Extra: req.Extra}
	h.deferred(w, r, domain.FavoriteToggled, subject)
}

func (h *BroadcastHandler) NotificationSent(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}

	n, err := h.repo.GetNotification(r.Context(), req.NotificationID)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	h.deferred(w, r, domain.NotificationSent, domain.Subject{Notification: n})
}

// deferred events always acknowledge with 202: enqueue problems are the
// queue's to retry, not the caller's.
func (h *BroadcastHandler) deferred(w http.ResponseWriter, r *http.Request, kind domain.EventKind, s domain.Subject) {
	if err := h.dispatcher.Dispatch(r.Context(), kind, s); err != nil {
		// Only shaping programmer errors reach here for deferred kinds.
		h.logDispatchError(r.Context(), kind, err)
		response.Error(w, http.StatusInternalServerError, "dispatch failed")
		return
	}
	response.JSON(w, http.StatusAccepted, map[string]string{"event": kind.Name()})
}

func (h *BroadcastHandler) writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "subject not found")
		return
	}
	response.Error(w, http.StatusInternalServerError, err.Error())
}

func (h *BroadcastHandler) logDispatchError(ctx context.Context, kind domain.EventKind, err error) {
	h.logger.Error("dispatch error",
		zap.String("event", kind.Name()),
		zap.String("request_id", middleware.GetRequestID(ctx)),
		zap.Error(err))
}
