// Package chat orchestrates the message pipeline: classify the user's
// message, reduce the system context, call the AI provider, render the
// response shape, and persist the exchange.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatbot-backend/internal/ai"
	"chatbot-backend/internal/chat/analyze"
	"chatbot-backend/internal/chat/classify"
	"chatbot-backend/internal/chat/reduce"
	"chatbot-backend/internal/chat/render"
	"chatbot-backend/internal/common/config"
	stderrors "chatbot-backend/internal/common/errors"
	"chatbot-backend/internal/common/logger"
	"chatbot-backend/internal/common/metrics"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/storage"
	"chatbot-backend/internal/tree"
)

const apologyMessage = "I apologize, but I encountered an error processing your request. Please try again."

// Archive is the subset of the exchange archive the service depends on.
type Archive interface {
	Index(ctx context.Context, doc *storage.ArchivedExchange) error
	Search(ctx context.Context, userID, query string, limit int) ([]*storage.ArchivedExchange, error)
}

// Service wires the pipeline stages to the persistence layer.
type Service struct {
	cfg      config.ChatConfig
	provider ai.Provider
	messages models.MessageRepository
	sessions models.SessionStore
	archive  Archive
	logger   logger.Logger
}

func NewService(
	cfg config.ChatConfig,
	provider ai.Provider,
	messages models.MessageRepository,
	sessions models.SessionStore,
	archive Archive,
	log logger.Logger,
) *Service {
	return &Service{
		cfg:      cfg,
		provider: provider,
		messages: messages,
		sessions: sessions,
		archive:  archive,
		logger:   log.WithFields(map[string]interface{}{"component": "chat-service"}),
	}
}

// ProcessMessage runs one message through the full pipeline. Validation
// failures return an error; downstream failures degrade into an apology
// response so the conversation stays alive.
func (s *Service) ProcessMessage(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	started := time.Now()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	session, err := s.getOrCreateSession(ctx, req)
	if err != nil {
		return nil, stderrors.NewSessionStoreFailedError(err)
	}

	history := s.conversationHistory(ctx, session.SessionID)
	analysis := classify.Classify(req.Message, req.SystemContext)
	facts := analyze.Analyze(req.SystemContext)
	routed := routeIntent(analysis, req.Message)
	reduced := reduce.Reduce(req.SystemContext, routed)
	format := resolveFormat(reduced, analysis, facts)

	prompt := ai.BuildPrompt(req, history, &analysis)
	generateStarted := time.Now()
	aiText, err := s.provider.Generate(ctx, prompt)
	metrics.AIProviderDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(generateStarted).Seconds())
	if err != nil {
		provErr := providerError(s.provider.Name(), err)
		s.logger.Error("provider call failed", map[string]interface{}{
			"provider":  s.provider.Name(),
			"sessionId": session.SessionID,
			"error":     err.Error(),
		})
		metrics.AIProviderCalls.WithLabelValues(s.provider.Name(), "error").Inc()
		metrics.ChatMessagesFailed.WithLabelValues(string(provErr.Code)).Inc()
		return errorResponse(session.SessionID, provErr), nil
	}
	metrics.AIProviderCalls.WithLabelValues(s.provider.Name(), "ok").Inc()

	rendered := render.Render(aiText, reduced, format)
	response := s.assembleResponse(session.SessionID, &analysis, &rendered)

	s.persistExchange(ctx, req, response, session, analysis)
	s.touchSession(ctx, session)

	metrics.ChatMessagesProcessed.WithLabelValues(string(analysis.Intent), string(response.ResponseFormat)).Inc()
	metrics.ChatMessageDuration.WithLabelValues(string(analysis.Intent)).Observe(time.Since(started).Seconds())

	return response, nil
}

// History returns the full message history for a session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]*models.ChatMessage, error) {
	msgs, err := s.messages.BySession(ctx, sessionID)
	if err != nil {
		return nil, stderrors.NewHistoryQueryFailedError(sessionID, err)
	}
	return msgs, nil
}

// ClearHistory deletes all stored messages for a session.
func (s *Service) ClearHistory(ctx context.Context, sessionID string) error {
	if err := s.messages.DeleteBySession(ctx, sessionID); err != nil {
		return stderrors.NewHistoryWriteFailedError(sessionID, err)
	}
	return nil
}

// Sessions lists a user's active sessions.
func (s *Service) Sessions(ctx context.Context, userID string) ([]*models.ChatSession, error) {
	sessions, err := s.sessions.ForUser(ctx, userID)
	if err != nil {
		return nil, stderrors.NewSessionStoreFailedError(err)
	}
	return sessions, nil
}

// EndSession marks a session inactive.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	err := s.sessions.End(ctx, sessionID)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return stderrors.NewSessionNotFoundError(sessionID)
	}
	if err != nil {
		return stderrors.NewSessionStoreFailedError(err)
	}
	metrics.ActiveSessions.Dec()
	return nil
}

// SearchExchanges runs a full-text search over archived exchanges.
func (s *Service) SearchExchanges(ctx context.Context, userID, query string, limit int) ([]*storage.ArchivedExchange, error) {
	if strings.TrimSpace(query) == "" {
		return nil, stderrors.NewInvalidRequestError("search query is required")
	}
	results, err := s.archive.Search(ctx, userID, query, limit)
	if err != nil {
		return nil, stderrors.NewArchiveQueryFailedError(err)
	}
	return results, nil
}

// CleanupSessions deactivates idle sessions and purges old history. Meant
// to run periodically from the server's cleanup ticker.
func (s *Service) CleanupSessions(ctx context.Context) {
	deactivateCutoff := time.Now().AddDate(0, 0, -s.cfg.DeactivateAfterDays)
	deactivated, err := s.sessions.DeactivateIdle(ctx, deactivateCutoff)
	if err != nil {
		s.logger.Error("session cleanup failed", map[string]interface{}{"error": err.Error()})
	}

	deleteCutoff := time.Now().AddDate(0, 0, -s.cfg.DeleteAfterDays)
	purged, err := s.messages.DeleteOlderThan(ctx, deleteCutoff)
	if err != nil {
		s.logger.Error("history purge failed", map[string]interface{}{"error": err.Error()})
	}

	// Reconcile the gauge: TTL expiry removes sessions without touching it.
	if active, err := s.sessions.CountActive(ctx); err == nil {
		metrics.ActiveSessions.Set(float64(active))
	}

	s.logger.Info("cleanup pass finished", map[string]interface{}{
		"deactivatedSessions": deactivated,
		"purgedMessages":      purged,
	})
}

// ==========================
// Pipeline helpers
// ==========================

func validateRequest(req *models.ChatRequest) error {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return stderrors.NewInvalidRequestError("message is required")
	}
	if len(req.Message) > models.MaxMessageLength {
		return stderrors.NewMessageTooLongError(len(req.Message), models.MaxMessageLength)
	}
	return nil
}

// routeIntent maps the classifier's coarse labels onto a reduction strategy.
// Keyword hits refine the routing so every strategy stays reachable.
func routeIntent(analysis classify.Analysis, message string) models.Intent {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "user"):
		return models.IntentUserManagement
	case strings.Contains(lower, "status") || strings.Contains(lower, "health"):
		return models.IntentSystemStatus
	case strings.Contains(lower, "report"):
		return models.IntentReportGeneration
	}

	switch analysis.Intent {
	case models.IntentSystemInfo:
		return models.IntentSystemDataQuery
	case models.IntentDataQuery:
		switch analysis.DataType {
		case models.DataTypeStructured:
			if strings.Contains(lower, "list") {
				return models.IntentListQuery
			}
			return models.IntentTableQuery
		case models.DataTypeSummary:
			return models.IntentReportGeneration
		}
		return models.IntentSystemDataQuery
	}
	return models.IntentGeneralQuery
}

// resolveFormat prefers the reducer's hint, then the classifier's suggestion,
// then a default derived from the context's structure.
func resolveFormat(reduced *tree.Value, analysis classify.Analysis, facts analyze.StructuralFacts) models.ResponseFormat {
	if hint, ok := reduce.FormatHint(reduced); ok {
		return hint
	}
	if analysis.SuggestedFormat != models.FormatText {
		return analysis.SuggestedFormat
	}
	return structuralFormat(facts)
}

// structuralFormat maps the analyzer's visualization pick onto a response
// format. Used when the classifier fell back to plain text.
func structuralFormat(facts analyze.StructuralFacts) models.ResponseFormat {
	switch facts.Visualization {
	case "metrics_dashboard":
		return models.FormatChart
	case "data_table":
		return models.FormatTable
	case "list_view":
		return models.FormatList
	}
	return models.FormatText
}

func (s *Service) assembleResponse(sessionID string, analysis *classify.Analysis, rendered *render.FormattedResponse) *models.ChatResponse {
	metadata := map[string]interface{}{
		"intent":             string(analysis.Intent),
		"dataType":           string(analysis.DataType),
		"entities":           analysis.Entities,
		"suggestedFormat":    string(analysis.SuggestedFormat),
		"confidence":         analysis.Confidence,
		"requiresSystemData": analysis.RequiresSystemData,
	}
	for k, v := range rendered.Metadata {
		metadata[k] = v
	}

	return &models.ChatResponse{
		SessionID:        sessionID,
		Message:          rendered.Message,
		ResponseFormat:   rendered.Format,
		Content:          rendered.Content,
		Timestamp:        time.Now().UTC(),
		Success:          rendered.Success,
		Error:            rendered.Error,
		Metadata:         metadata,
		SuggestedActions: rendered.SuggestedActions,
	}
}

func (s *Service) getOrCreateSession(ctx context.Context, req *models.ChatRequest) (*models.ChatSession, error) {
	if req.SessionID != "" {
		session, err := s.sessions.Get(ctx, req.SessionID)
		if err == nil && session.Active {
			return session, nil
		}
		if err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
			return nil, err
		}
	}

	session := &models.ChatSession{
		SessionID:    uuid.NewString(),
		UserID:       req.UserID,
		Context:      serializeContext(req),
		CreatedAt:    time.Now().UTC(),
		LastActivity: time.Now().UTC(),
		Active:       true,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	metrics.ActiveSessions.Inc()
	return session, nil
}

func serializeContext(req *models.ChatRequest) string {
	if req.SystemContext == nil {
		return ""
	}
	raw, err := json.Marshal(req.SystemContext)
	if err != nil {
		return ""
	}
	return string(raw)
}

// conversationHistory returns recent exchanges as "User: .../Assistant: ..."
// turns. Failures degrade to an empty history.
func (s *Service) conversationHistory(ctx context.Context, sessionID string) []string {
	since := time.Now().Add(-time.Duration(s.cfg.HistoryWindowHours) * time.Hour)
	msgs, err := s.messages.RecentBySession(ctx, sessionID, since)
	if err != nil {
		s.logger.Warn("history lookup failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return nil
	}

	history := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		history = append(history, "User: "+msg.Message+"\nAssistant: "+msg.Response)
	}
	return history
}

func (s *Service) persistExchange(ctx context.Context, req *models.ChatRequest, response *models.ChatResponse, session *models.ChatSession, analysis classify.Analysis) {
	metadataJSON, err := json.Marshal(response.Metadata)
	if err != nil {
		s.logger.Error("metadata serialization failed", map[string]interface{}{"error": err.Error()})
		metadataJSON = []byte("{}")
	}

	msg := &models.ChatMessage{
		SessionID:      session.SessionID,
		UserID:         session.UserID,
		Message:        req.Message,
		Response:       response.Message,
		MessageType:    models.MessageTypeUserQuery,
		ResponseFormat: response.ResponseFormat,
		Metadata:       string(metadataJSON),
		Timestamp:      time.Now().UTC(),
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		s.logger.Error("exchange persistence failed", map[string]interface{}{
			"sessionId": session.SessionID,
			"error":     err.Error(),
		})
		return
	}

	// Archive indexing is best-effort; search lags rather than blocking chat.
	if s.archive != nil {
		if err := s.archive.Index(ctx, storage.FromMessage(msg, string(analysis.Intent))); err != nil {
			archiveErr := stderrors.NewArchiveIndexFailedError(err)
			s.logger.Warn("archive indexing failed", map[string]interface{}{
				"sessionId": session.SessionID,
				"error":     archiveErr.Error(),
				"details":   archiveErr.Details,
				"retryable": archiveErr.Retryable,
			})
		}
	}
}

func (s *Service) touchSession(ctx context.Context, session *models.ChatSession) {
	session.Touch(time.Now().UTC())
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Warn("session touch failed", map[string]interface{}{
			"sessionId": session.SessionID,
			"error":     err.Error(),
		})
	}
}

func errorResponse(sessionID string, err error) *models.ChatResponse {
	return &models.ChatResponse{
		SessionID:      sessionID,
		Message:        apologyMessage,
		ResponseFormat: models.FormatText,
		Timestamp:      time.Now().UTC(),
		Success:        false,
		Error:          err.Error(),
	}
}

// providerError normalizes a provider failure into the standard taxonomy.
func providerError(provider string, err error) *stderrors.StandardError {
	if errors.Is(err, ai.ErrProviderTimeout) {
		return stderrors.NewAIProviderTimeoutError(provider)
	}
	return stderrors.NewAIProviderFailedError(provider, err)
}
