// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package fixer

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the request body for the /api/v1/chat endpoint.
type ChatRequest struct {
	Message   string `json:"message"`
	ShowHints bool   `json:"show_hints"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// HealthResponse is the decoded /health payload.
// Ready is false whenever ai_ready is absent or not a boolean.
type HealthResponse struct {
	Status string
	Ready  bool
	Files  map[string]any
}

// Hint is a retrieved Konglish phrase and its natural alternative.
type Hint struct {
	Konglish   string  `json:"konglish"`
	Natural    string  `json:"natural"`
	Why        string  `json:"why,omitempty"`
	Similarity float64 `json:"sim,omitempty"`
}

// ChatResponse is the response from the /api/v1/chat endpoint.
type ChatResponse struct {
	Response       string   `json:"response"`
	Hints          []Hint   `json:"hints,omitempty"`
	ProcessingTime *float64 `json:"processing_time,omitempty"` // seconds
	ModelUsed      string   `json:"model_used,omitempty"`
}

// InfoResponse is the response from the service root endpoint.
type InfoResponse struct {
	Message     string `json:"message"`
	Status      string `json:"status"`
	Initialized bool   `json:"initialized"`
	ModelLoaded bool   `json:"model_loaded"`
	RAGLoaded   bool   `json:"rag_loaded"`
}

// StatsResponse is the response from the /api/v1/stats endpoint.
type StatsResponse struct {
	ModelInitialized bool           `json:"model_initialized"`
	MLAvailable      bool           `json:"ml_available"`
	Device           string         `json:"device"`
	ModelLoaded      bool           `json:"model_loaded"`
	RAGDatabaseSize  int            `json:"rag_database_size"`
	ModelConfig      map[string]any `json:"model_config,omitempty"`
	RAGConfig        map[string]any `json:"rag_config,omitempty"`
	Timestamp        string         `json:"timestamp,omitempty"`
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// ServiceErrorBody is the error payload returned with non-2xx responses.
// Detail is usually a string; validation failures may return a list.
type ServiceErrorBody struct {
	Detail any `json:"detail"`
}

// HasHints returns true if the response carries at least one hint.
func (r *ChatResponse) HasHints() bool {
	return len(r.Hints) > 0
}
