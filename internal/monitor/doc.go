// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package monitor tracks whether the correction service is reachable and
// its model is ready to answer.
//
// A Monitor owns a single model.ConnectionStatus. It starts as
// StatusChecking, polls the service health endpoint on a fixed interval once
// started, and replaces the status wholesale after each check:
//
//	health error         -> StatusError
//	ai_ready == true     -> StatusReady
//	anything else        -> StatusLoading
//
// Usage:
//
//	mon := monitor.New(client, monitor.DefaultConfig())
//	mon.Start(ctx)
//	defer mon.Stop()
//
//	updates, cancel := mon.Subscribe()
//	defer cancel()
//	for range updates {
//	    fmt.Println(mon.Status())
//	}
package monitor
