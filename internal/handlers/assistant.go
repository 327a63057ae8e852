package handlers

import (
	"net/http"

	"github.com/dcode-ide/apiserver/internal/logging"
	"github.com/dcode-ide/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
)

// AssistantHandler relays code questions to the AI service. The endpoint
// does not require a token.
type AssistantHandler struct {
	assistant *services.AssistantService
	logger    logging.Logger
}

func NewAssistantHandler(assistant *services.AssistantService, logger logging.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, logger: logger}
}

// AssistantRouter registers the AI route on the given router.
func AssistantRouter(r chi.Router, assistant *services.AssistantService, logger logging.Logger) {
	handler := NewAssistantHandler(assistant, logger)
	r.Post("/askAI", handler.AskAI)
}

func (h *AssistantHandler) AskAI(w http.ResponseWriter, r *http.Request) {
	var req AskAIRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.assistant.Analyze(r.Context(), services.AnalyzeRequest{
		Code:      req.Code,
		Question:  req.Question,
		Language:  req.Language,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, projectNotFound)
		return
	}

	writeJSON(w, http.StatusOK, AskAIResponse{
		Response: ok("AI analysis completed successfully"),
		Reply:    reply,
	})
}

type AskAIRequest struct {
	Code      string `json:"code"`
	Question  string `json:"question"`
	Language  string `json:"language"`
	ProjectID string `json:"projectId"`
}

type AskAIResponse struct {
	Response
	Reply string `json:"response"`
}
