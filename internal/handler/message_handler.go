package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/service"
)

// GetMessages lists contact messages filtered by ?filter=all|read|unread.
func (a *API) GetMessages(c *gin.Context) {
	messages, err := a.messages.List(c.DefaultQuery("filter", service.MessageFilterAll))
	if err != nil {
		respondInternal(c, "failed to load messages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetMessage returns a message and marks it read.
func (a *API) GetMessage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	msg, err := a.messages.View(id)
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			respondError(c, http.StatusNotFound, "message not found")
			return
		}
		respondInternal(c, "failed to load message", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

type readRequest struct {
	Read *bool `json:"read" binding:"required"`
}

// SetMessageRead toggles the read flag of a message.
func (a *API) SetMessageRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req readRequest
	if !bindJSON(c, &req, "read flag is required") {
		return
	}
	if err := a.messages.SetRead(id, *req.Read); err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			respondError(c, http.StatusNotFound, "message not found")
			return
		}
		respondInternal(c, "failed to update message", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "read": *req.Read})
}

// DeleteMessage removes a message.
func (a *API) DeleteMessage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := a.messages.Delete(id); err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			respondError(c, http.StatusNotFound, "message not found")
			return
		}
		respondInternal(c, "failed to delete message", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSubscribers lists newsletter subscribers.
func (a *API) GetSubscribers(c *gin.Context) {
	subs, err := a.subscribers.List()
	if err != nil {
		respondInternal(c, "failed to load subscribers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": subs})
}

// DeleteSubscriber removes a subscriber.
func (a *API) DeleteSubscriber(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := a.subscribers.Delete(id); err != nil {
		if errors.Is(err, service.ErrSubscriberNotFound) {
			respondError(c, http.StatusNotFound, "subscriber not found")
			return
		}
		respondInternal(c, "failed to delete subscriber", err)
		return
	}
	c.Status(http.StatusNoContent)
}
