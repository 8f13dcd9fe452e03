// Package gateway routes canonical chat events through the per-user
// dialogue state machine and the fixed command catalogue.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/opsgate/opsgate/internal/extract"
	"github.com/opsgate/opsgate/internal/pager"
	"github.com/opsgate/opsgate/internal/store"
)

// Runner executes a command template on the managed host.
type Runner interface {
	Run(ctx context.Context, template string, args map[string]string) (string, error)
}

// Pager stores and advances per-owner output buffers.
type Pager interface {
	Paginate(ownerID, text string)
	Advance(ownerID string) (pager.Page, bool)
	Drop(ownerID string)
}

// RecordStore persists extraction results and reads them back. May be
// nil when the console runs without a database; save buttons are then
// not offered and the read-back commands report that.
type RecordStore interface {
	AddEmails(ctx context.Context, values []string) error
	AddPhones(ctx context.Context, values []string) error
	ListEmails(ctx context.Context) ([]store.Record, error)
	ListPhones(ctx context.Context) ([]store.Record, error)
}

// Event is the canonical inbound chat event. The transport normalizes its
// own update shapes (messages, button callbacks) into this one type before
// anything reaches the core.
type Event struct {
	ChatID      string
	UserID      string
	DisplayName string
	Text        string
	IsCommand   bool
	Callback    string
}

// Action is an inline button attached to an outbound message. The tag
// comes back verbatim as Event.Callback when the user clicks it.
type Action struct {
	Label string
	Tag   string
}

type Message struct {
	Text      string
	Preformat bool
	Actions   []Action
}

// Output is everything the transport should do in response to one event.
type Output struct {
	Messages      []Message
	ResetChatMenu bool
}

const (
	actionMore       = "more"
	actionSavePrefix = "save:"
)

type Service struct {
	runner   Runner
	pager    Pager
	records  RecordStore
	logger   *slog.Logger
	sessions *sessionStore
	newToken func() string
}

func New(runner Runner, pageStore Pager, records RecordStore, logger *slog.Logger) *Service {
	return &Service{
		runner:   runner,
		pager:    pageStore,
		records:  records,
		logger:   logger,
		sessions: newSessionStore(),
		newToken: uuid.NewString,
	}
}

// HandleEvent processes one inbound event under the user's session lock.
func (s *Service) HandleEvent(ctx context.Context, event Event) (Output, error) {
	sess := s.sessions.get(event.UserID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch {
	case event.Callback != "":
		return s.handleCallback(ctx, sess, event), nil
	case event.IsCommand:
		return s.handleCommand(ctx, sess, event), nil
	default:
		return s.handleText(ctx, sess, event), nil
	}
}

func (s *Service) handleCallback(ctx context.Context, sess *session, event Event) Output {
	switch {
	case event.Callback == actionMore:
		return s.nextPage(event.UserID)
	case strings.HasPrefix(event.Callback, actionSavePrefix):
		return s.savePending(ctx, sess, event)
	default:
		s.logger.Debug("unknown callback ignored", "tag", event.Callback, "user", event.UserID)
		return Output{}
	}
}

func (s *Service) handleCommand(ctx context.Context, sess *session, event Event) Output {
	name := commandName(event.Text)

	switch name {
	case "start":
		return reply(fmt.Sprintf("Hello %s!\nUse /help for the command list.", event.DisplayName))
	case "help":
		return reply(helpText())
	case "cancel":
		return s.cancelDialog(sess, event)
	case "find_email":
		s.enterDialog(sess, stateAwaitEmail)
		return reply("Send the text to search for email addresses.")
	case "find_phone_number":
		s.enterDialog(sess, stateAwaitPhone)
		return reply("Send the text to search for phone numbers.")
	case "verify_password":
		s.enterDialog(sess, stateAwaitPassword)
		return reply("Send the password to check.")
	case "get_apt_list":
		return s.enterPackageDialog(ctx, sess, event)
	case "get_emails":
		return s.listSavedRecords(ctx, event, extract.KindEmail)
	case "get_phones":
		return s.listSavedRecords(ctx, event, extract.KindPhone)
	}

	if _, ok := remoteByName[name]; ok {
		return s.dispatchCatalogue(ctx, event, name)
	}
	s.logger.Debug("unknown command ignored", "command", name, "user", event.UserID)
	return Output{}
}

func (s *Service) handleText(ctx context.Context, sess *session, event Event) Output {
	handler, ok := textHandlers[sess.state]
	if !ok {
		s.logger.Debug("free text outside dialogue ignored", "user", event.UserID)
		return Output{}
	}
	output := handler.handle(s, ctx, sess, event)
	sess.state = handler.next
	return output
}

// dispatchCatalogue runs a catalogue command with no arguments and
// paginates its output. The descriptor lookup panics on an unregistered
// name; dispatch is only reachable from names the menu registered.
func (s *Service) dispatchCatalogue(ctx context.Context, event Event, name string) Output {
	descriptor := catalogueDescriptor(name)
	s.logger.Info("catalogue command", "command", name, "user", event.UserID)

	data, err := s.runner.Run(ctx, descriptor.Template, nil)
	if err != nil {
		return reply("Invalid data, try again.")
	}
	s.pager.Paginate(event.UserID, data)
	return s.nextPage(event.UserID)
}

// listSavedRecords renders one kind's persisted records as an "id. value"
// listing and pages it like catalogue output.
func (s *Service) listSavedRecords(ctx context.Context, event Event, kind extract.Kind) Output {
	if s.records == nil {
		return reply("Saving is not available.")
	}

	var (
		records []store.Record
		err     error
	)
	switch kind {
	case extract.KindEmail:
		records, err = s.records.ListEmails(ctx)
	case extract.KindPhone:
		records, err = s.records.ListPhones(ctx)
	}
	if err != nil {
		s.logger.Warn("reading saved records failed", "kind", kind, "error", err)
		return reply("Could not read the saved records, try again.")
	}
	if len(records) == 0 {
		return reply("No data.")
	}
	s.logger.Info("saved records listed", "kind", kind, "user", event.UserID, "records", len(records))

	var b strings.Builder
	for _, record := range records {
		fmt.Fprintf(&b, "%d. %s\n", record.ID, record.Value)
	}
	s.pager.Paginate(event.UserID, strings.TrimSuffix(b.String(), "\n"))
	return s.nextPage(event.UserID)
}

// nextPage advances the user's buffer and renders the page with a More
// button while pages remain. An absent or exhausted buffer is answered
// with a neutral notice, never an error.
func (s *Service) nextPage(userID string) Output {
	page, ok := s.pager.Advance(userID)
	if !ok {
		return reply("No more data.")
	}
	message := Message{Text: page.Text, Preformat: true}
	if page.HasMore {
		message.Actions = []Action{{
			Label: fmt.Sprintf("More — page %d of %d shown", page.Index, page.Total),
			Tag:   actionMore,
		}}
	}
	return Output{Messages: []Message{message}}
}

func (s *Service) enterDialog(sess *session, state dialogState) {
	sess.state = state
	sess.pending = nil
}

func (s *Service) enterPackageDialog(ctx context.Context, sess *session, event Event) Output {
	s.enterDialog(sess, stateAwaitPackageFilter)
	s.logger.Info("package dialogue started", "user", event.UserID)

	output := reply("Type a filter to narrow the package list.\nA filter matching a single package shows its details.")
	data, err := s.runner.Run(ctx, aptListTemplate, nil)
	if err != nil {
		output.Messages = append(output.Messages, Message{Text: "Invalid data, try again."})
		return output
	}
	s.pager.Paginate(event.UserID, data)
	page := s.nextPage(event.UserID)
	output.Messages = append(output.Messages, page.Messages...)
	return output
}

func (s *Service) cancelDialog(sess *session, event Event) Output {
	if sess.state == stateIdle {
		return reply("Nothing to cancel.")
	}
	fromPackageDialog := sess.state == stateAwaitPackageFilter
	sess.state = stateIdle
	sess.pending = nil
	s.pager.Drop(event.UserID)
	s.logger.Info("dialogue cancelled", "user", event.UserID)

	output := reply("Dialogue cancelled.")
	output.ResetChatMenu = fromPackageDialog
	return output
}

func commandName(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimPrefix(fields[0], "/")
}

func helpText() string {
	var b strings.Builder
	b.WriteString("Console commands:")
	for _, command := range Commands() {
		fmt.Fprintf(&b, "\n/%s - %s", command.Name, command.Description)
	}
	return b.String()
}

func reply(text string) Output {
	return Output{Messages: []Message{{Text: text}}}
}
