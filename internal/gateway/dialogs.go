package gateway

import (
	"context"
	"fmt"

	"github.com/opsgate/opsgate/internal/extract"
)

// textHandlers is the state machine table for free-text input: the handler
// run in each awaiting state and the state the session moves to afterwards.
// The package-filter dialogue is a search loop and stays active; every
// other dialogue is single-shot and returns to idle even on failure.
var textHandlers = map[dialogState]struct {
	handle func(*Service, context.Context, *session, Event) Output
	next   dialogState
}{
	stateAwaitEmail:         {(*Service).handleEmailInput, stateIdle},
	stateAwaitPhone:         {(*Service).handlePhoneInput, stateIdle},
	stateAwaitPassword:      {(*Service).handlePasswordInput, stateIdle},
	stateAwaitPackageFilter: {(*Service).handlePackageFilter, stateAwaitPackageFilter},
}

func (s *Service) handleEmailInput(ctx context.Context, sess *session, event Event) Output {
	return s.handleExtraction(sess, event, extract.KindEmail, "No email addresses found.")
}

func (s *Service) handlePhoneInput(ctx context.Context, sess *session, event Event) Output {
	return s.handleExtraction(sess, event, extract.KindPhone, "No phone numbers found.")
}

// handleExtraction renders the numbered match listing and, when a record
// store is attached, stages the raw matches behind a tokenized save button.
// A later extraction overwrites the staged one; it is never merged.
func (s *Service) handleExtraction(sess *session, event Event, kind extract.Kind, notFound string) Output {
	matches := extract.Find(kind, event.Text)
	if matches == nil {
		s.logger.Info("extraction found nothing", "kind", kind, "user", event.UserID)
		return reply(notFound)
	}
	s.logger.Info("extraction finished", "kind", kind, "user", event.UserID, "matches", len(matches))

	message := Message{Text: extract.FormatNumbered(matches)}
	if s.records != nil {
		token := s.newToken()
		sess.pending = &pendingExtraction{kind: kind, values: matches, token: token}
		message.Actions = []Action{{Label: "Save results", Tag: actionSavePrefix + token}}
	}
	return Output{Messages: []Message{message}}
}

func (s *Service) handlePasswordInput(ctx context.Context, sess *session, event Event) Output {
	passed, total := extract.PasswordComplexity(event.Text)
	s.logger.Info("password checked", "user", event.UserID, "passed", passed, "total", total)
	if passed == total {
		return reply("Password is strong.")
	}
	return reply("Password is weak.")
}

func (s *Service) handlePackageFilter(ctx context.Context, sess *session, event Event) Output {
	data, err := s.runner.Run(ctx, aptFilterTemplate, map[string]string{"pkg": event.Text})
	if err != nil {
		return reply("Invalid data, try again.")
	}
	s.pager.Paginate(event.UserID, data)
	return s.nextPage(event.UserID)
}

// savePending persists the staged extraction when the callback token
// matches. The staging is cleared whether the insert succeeds or fails.
func (s *Service) savePending(ctx context.Context, sess *session, event Event) Output {
	token := event.Callback[len(actionSavePrefix):]
	pending := sess.pending
	if pending == nil || pending.token != token {
		s.logger.Debug("stale save action ignored", "user", event.UserID)
		return reply("Nothing to save.")
	}
	sess.pending = nil

	if s.records == nil {
		return reply("Saving is not available.")
	}

	var err error
	switch pending.kind {
	case extract.KindEmail:
		err = s.records.AddEmails(ctx, pending.values)
	case extract.KindPhone:
		err = s.records.AddPhones(ctx, pending.values)
	default:
		s.logger.Error("staged extraction has unknown kind", "kind", pending.kind)
		return reply("Nothing to save.")
	}
	if err != nil {
		s.logger.Warn("saving extraction failed", "kind", pending.kind, "error", err)
		return reply("Could not save the results, try again.")
	}
	return reply(fmt.Sprintf("Saved %d records.", len(pending.values)))
}
