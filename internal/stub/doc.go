// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stub serves a stand-in for the FriendsFixer correction service.
//
// It answers the same endpoints as the real backend so the client can be
// developed and tested without a GPU:
//
//	GET  /               service info
//	GET  /health         {"status":"healthy","ai_ready":bool,"files":{...}}
//	POST /api/v1/chat    canned corrections from a Konglish phrase table
//	GET  /api/v1/stats   model and retrieval settings
//
// The model reports ai_ready=false until the configured warm-up has passed.
// Chat requests beyond the rate limit get 503 {"detail":"model overloaded"}.
package stub
