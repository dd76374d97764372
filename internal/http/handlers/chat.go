package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/repa-ch/repa-api/internal/service"
)

// ChatProcessor runs a rental request through the match pipeline.
// Implemented by service.ChatService.
type ChatProcessor interface {
	Process(ctx context.Context, message string) (*service.ChatResult, error)
}

// ChatHandler handles the rental match chat endpoint.
type ChatHandler struct {
	chat ChatProcessor
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat ChatProcessor) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ChatInput represents a chat request.
type ChatInput struct {
	Body struct {
		Message string `json:"message" minLength:"1" doc:"Free-text rental request containing the listing URL"`
	}
}

// ChatOutput represents a chat response.
type ChatOutput struct {
	Body struct {
		Response string `json:"response" doc:"Match report, or guidance when the message had no listing URL"`
		Status   string `json:"status" enum:"success,error" doc:"Pipeline outcome"`
	}
}

// Chat processes a rental request message and returns the match report.
// A message without a listing URL yields a status="error" body, not an HTTP
// error; pipeline stage failures surface as 500 with the stage's message.
func (h *ChatHandler) Chat(ctx context.Context, input *ChatInput) (*ChatOutput, error) {
	result, err := h.chat.Process(ctx, input.Body.Message)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}

	out := &ChatOutput{}
	out.Body.Response = result.Response
	out.Body.Status = result.Status
	return out, nil
}
