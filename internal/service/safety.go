package service

import (
	"fmt"
	"strings"

	"github.com/copperkettle/catering/internal/infrastructure/config"
)

// GateInput carries the facts about one sync invocation that the safety
// gate rules on.
type GateInput struct {
	// ConfirmationToken is the token passed on the command line.
	ConfirmationToken string
	// TargetDescriptor is the credential-free description of the
	// persistence target (host:port/database).
	TargetDescriptor string
	// SourceItemCount is the number of items in the freshly-fetched
	// provider catalog.
	SourceItemCount int
}

// GateResult reports whether a destructive sync may proceed. When it may
// not, Reason names the first failing guard.
type GateResult struct {
	Passed bool
	Reason string
}

func failGate(format string, args ...any) GateResult {
	return GateResult{Passed: false, Reason: fmt.Sprintf(format, args...)}
}

// CheckSyncSafety evaluates the pre-flight guards for a destructive sync,
// in order, short-circuiting on the first failure:
//
//  1. explicit confirmation token matches the configured one;
//  2. the target is on the allow-list (when one is configured), and does
//     not match any blocked keyword — the keyword match is a best-effort
//     heuristic net, the allow-list is the primary mechanism;
//  3. the source item count meets the configured minimum, so an upstream
//     fetch that silently returned empty cannot wipe local data.
//
// All guards must pass before any archive/restore write happens.
func CheckSyncSafety(in GateInput, cfg config.SyncConfig) GateResult {
	if cfg.RequireConfirmation && in.ConfirmationToken != cfg.ConfirmationToken {
		return failGate("confirmation: missing or wrong confirmation token (pass -confirm=%s)", cfg.ConfirmationToken)
	}

	target := strings.ToLower(in.TargetDescriptor)
	if len(cfg.AllowedTargets) > 0 {
		allowed := false
		for _, a := range cfg.AllowedTargets {
			if strings.Contains(target, strings.ToLower(a)) {
				allowed = true
				break
			}
		}
		if !allowed {
			return failGate("target: %q is not on the sync allow-list", in.TargetDescriptor)
		}
	}
	for _, kw := range cfg.BlockedTargetKeywords {
		if kw == "" {
			continue
		}
		if strings.Contains(target, strings.ToLower(kw)) {
			return failGate("target: %q matches blocked keyword %q", in.TargetDescriptor, kw)
		}
	}

	if in.SourceItemCount < cfg.MinSourceItems {
		return failGate("source: provider returned %d items, minimum is %d", in.SourceItemCount, cfg.MinSourceItems)
	}

	return GateResult{Passed: true}
}
