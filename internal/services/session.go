package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThatDevStudio/ztlctl/internal/eventbus"
	"github.com/ThatDevStudio/ztlctl/internal/result"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
	"github.com/ThatDevStudio/ztlctl/internal/vault"
)

// SessionService implements session lifecycle and agent-context retrieval
// (§4.6, §4.10): start, log entries, a transactional close, and the
// checkpoint-based context/brief/cost views a collaborating agent queries.
type SessionService struct {
	engine  *Engine
	reweave *ReweaveService
	check   *CheckService
}

// NewSessionService builds a SessionService.
func NewSessionService(e *Engine, reweave *ReweaveService, check *CheckService) *SessionService {
	return &SessionService{engine: e, reweave: reweave, check: check}
}

// SessionStart opens a new session, identified by the caller-supplied id
// (an agent's own session token; ztlctl does not mint one).
func (s *SessionService) SessionStart(ctx context.Context, session string) (*result.Result, error) {
	const op = "session.start"
	if session == "" {
		return result.Fail(op, result.CodeInvalidInput, "session id is required", nil), nil
	}
	err := s.engine.runTx(ctx, func(tx *vault.Tx) error {
		_, err := sqlite.AppendSessionLog(ctx, tx.SQL(), session, "session-start", "session started", "", 0, true, "[]", "{}")
		return err
	})
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	res := result.Ok(op, map[string]any{"session": session})
	for _, w := range s.engine.dispatch(ctx, eventbus.PostSessionStart, session, map[string]any{"session": session}) {
		res.Warn(w)
	}
	return res, nil
}

// LogInput is one entry to append to a session's log.
type LogInput struct {
	Session   string
	EntryType string // "log" | "checkpoint" | "decision-made"
	Summary   string
	Detail    string
	TokenCost int
	Pinned    bool
	Refs      []string
	Metadata  map[string]any
}

// SessionLog appends one entry (§3: "per-session append-only sequence").
func (s *SessionService) SessionLog(ctx context.Context, in LogInput) (*result.Result, error) {
	const op = "session.log"
	if in.Summary == "" {
		return result.Fail(op, result.CodeInvalidInput, "summary is required", nil), nil
	}
	refsJSON, err := json.Marshal(in.Refs)
	if err != nil {
		return nil, err
	}
	metaJSON, err := json.Marshal(in.Metadata)
	if err != nil {
		return nil, err
	}
	var id int64
	txErr := s.engine.runTx(ctx, func(tx *vault.Tx) error {
		var err error
		id, err = sqlite.AppendSessionLog(ctx, tx.SQL(), in.Session, in.EntryType, in.Summary, in.Detail, in.TokenCost, in.Pinned, string(refsJSON), string(metaJSON))
		return err
	})
	if txErr != nil {
		return result.Fail(op, result.CodeIOError, txErr.Error(), nil), nil
	}
	return result.Ok(op, map[string]any{"id": id}), nil
}

// CloseReport summarizes a session-close pass.
type CloseReport struct {
	ReweavedNodes int
	OrphansSwept  int
	IntegrityOK   bool
	IntegrityText string
}

// SessionClose runs the close pipeline: Log Close -> Orphan Sweep (each
// node without edges is reweaved at the orphan score threshold) ->
// Integrity Check -> post-close event dispatch -> Drain Event WAL -> Report,
// as a synchronous barrier — the call does not return until the WAL is
// drained (§4.6). There is no separate cross-session reweave pass:
// reweaved_nodes counts the orphans the sweep linked.
func (s *SessionService) SessionClose(ctx context.Context, session string) (*result.Result, error) {
	const op = "session.close"

	if err := s.engine.runTx(ctx, func(tx *vault.Tx) error {
		_, err := sqlite.AppendSessionLog(ctx, tx.SQL(), session, "log", "session closed", "", 0, true, "[]", "{}")
		return err
	}); err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}

	report := CloseReport{}
	var warnings []string

	orphans, err := sqlite.OrphanNodes(ctx, s.engine.Store.DB())
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	savedThreshold := s.engine.Config.Reweave.MinScoreThreshold
	s.engine.Config.Reweave.MinScoreThreshold = s.engine.Config.Reweave.OrphanScoreThreshold
	for _, n := range orphans {
		outcome, err := s.reweave.Reweave(ctx, n.ID, ReweaveOptions{Session: session})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("orphan sweep: %s: %v", n.ID, err))
			continue
		}
		if len(outcome.Added) > 0 {
			report.ReweavedNodes++
			report.OrphansSwept++
		}
	}
	s.engine.Config.Reweave.MinScoreThreshold = savedThreshold

	checkResult := s.check.Check(ctx)
	report.IntegrityOK = checkResult.OK
	if summary, ok := checkResult.Data["summary"].(string); ok {
		report.IntegrityText = summary
	}
	for _, w := range checkResult.Warnings {
		warnings = append(warnings, fmt.Sprintf("integrity: %s", w))
	}

	warnings = append(warnings, s.engine.dispatch(ctx, eventbus.PostSessionClose, session, map[string]any{"session": session})...)

	if s.engine.Bus != nil {
		if err := s.engine.Bus.Drain(ctx); err != nil {
			warnings = append(warnings, fmt.Sprintf("drain: %v", err))
		}
	}

	res := result.Ok(op, map[string]any{
		"session":        session,
		"reweaved_nodes": report.ReweavedNodes,
		"orphans_swept":  report.OrphansSwept,
		"integrity_ok":   report.IntegrityOK,
	})
	for _, w := range warnings {
		res.Warn(w)
	}
	return res, nil
}

// Context assembles an agent's working context, bounded by a token budget
// (§4.10). Reduction resumes from the latest checkpoint entry: entries
// after it are included newest-last until the budget would be exceeded;
// when the budget forces a drop, a pinned entry is never dropped and a
// later entry's detail is dropped before its summary.
func (s *SessionService) Context(ctx context.Context, session string, budget int, ignoreCheckpoints bool) (*result.Result, error) {
	const op = "session.context"
	if budget <= 0 {
		budget = s.engine.Config.Session.DefaultBudgetTokens
	}

	entries, err := sqlite.SessionEntries(ctx, s.engine.Store.DB(), session)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}

	start := 0
	if !ignoreCheckpoints {
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].EntryType == sqlite.EntryCheckpoint {
				start = i
				break
			}
		}
	}
	window := entries[start:]

	spent := 0
	var included []map[string]any
	// Walk newest-first so the budget protects the most recent context,
	// then reverse for chronological display.
	for i := len(window) - 1; i >= 0; i-- {
		e := window[i]
		cost := e.TokenCost
		if spent+cost > budget && !e.Pinned {
			if e.Detail != "" && spent+estimateSummaryCost(e) <= budget {
				// Drop detail before dropping the entry entirely.
				included = append(included, map[string]any{"id": e.ID, "type": e.EntryType, "summary": e.Summary})
				spent += estimateSummaryCost(e)
				continue
			}
			continue
		}
		spent += cost
		included = append(included, map[string]any{"id": e.ID, "type": e.EntryType, "summary": e.Summary, "detail": e.Detail, "pinned": e.Pinned})
	}
	reverseMaps(included)

	return result.Ok(op, map[string]any{"session": session, "budget": budget, "spent": spent, "entries": included}), nil
}

// Brief renders a short human-facing summary of a session's state:
// checkpoints and decisions only, omitting routine log entries.
func (s *SessionService) Brief(ctx context.Context, session string) (*result.Result, error) {
	const op = "session.brief"
	entries, err := sqlite.SessionEntries(ctx, s.engine.Store.DB(), session)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	var lines []string
	for _, e := range entries {
		if e.EntryType == sqlite.EntryCheckpoint || e.EntryType == sqlite.EntryDecisionMade {
			lines = append(lines, fmt.Sprintf("[%s] %s", e.EntryType, e.Summary))
		}
	}
	return result.Ok(op, map[string]any{"session": session, "lines": lines}), nil
}

// Cost reports the token cost accumulated by a session's log.
func (s *SessionService) Cost(ctx context.Context, session string) (*result.Result, error) {
	const op = "session.cost"
	entries, err := sqlite.SessionEntries(ctx, s.engine.Store.DB(), session)
	if err != nil {
		return result.Fail(op, result.CodeIOError, err.Error(), nil), nil
	}
	total := 0
	byType := map[string]int{}
	for _, e := range entries {
		total += e.TokenCost
		byType[e.EntryType] += e.TokenCost
	}
	return result.Ok(op, map[string]any{"session": session, "total_tokens": total, "by_type": byType}), nil
}

func estimateSummaryCost(e *sqlite.SessionLogEntry) int {
	if e.TokenCost == 0 {
		return 0
	}
	// A summary-only entry costs a quarter of its full logged cost, a rough
	// but deterministic stand-in absent a real tokenizer in the pack.
	return e.TokenCost / 4
}

func reverseMaps(s []map[string]any) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
