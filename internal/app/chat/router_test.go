package chat_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crmchat/internal/app/chat"
	"crmchat/internal/app/cipher"
	"crmchat/internal/app/presence"
	"crmchat/internal/pkg/errs"
)

// fakeStore is an in-memory chat.MessageStore with server-assigned IDs and
// strictly increasing timestamps.
type fakeStore struct {
	messages []chat.Message
	seq      int
	now      time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (s *fakeStore) Insert(ctx context.Context, sender string, rcpt chat.Recipient, ciphertext string) (chat.Message, error) {
	s.seq++
	s.now = s.now.Add(time.Second)
	msg := chat.Message{
		ID:           fmt.Sprintf("m%d", s.seq),
		Sender:       sender,
		Receiver:     rcpt.ID,
		ReceiverKind: rcpt.Kind,
		Content:      ciphertext,
		Timestamp:    s.now,
	}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *fakeStore) DirectHistory(ctx context.Context, a, b string) ([]chat.Message, error) {
	var out []chat.Message
	for _, m := range s.messages {
		if m.ReceiverKind != chat.KindUser {
			continue
		}
		if (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) GroupHistory(ctx context.Context, groupID string) ([]chat.Message, error) {
	var out []chat.Message
	for _, m := range s.messages {
		if m.ReceiverKind == chat.KindGroup && m.Receiver == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeGroups is an in-memory chat.GroupDirectory.
type fakeGroups struct {
	members map[string][]string
}

func (g *fakeGroups) Members(ctx context.Context, groupID string) ([]string, error) {
	members, ok := g.members[groupID]
	if !ok {
		return nil, errs.NewError(errs.ErrGroupNotFound)
	}
	return members, nil
}

// recordedPush captures one event queued on a fakeWire.
type recordedPush struct {
	event   string
	payload any
}

// fakeWire records pushes and can simulate a saturated send buffer.
type fakeWire struct {
	pushes []recordedPush
	fail   bool
}

func (w *fakeWire) Push(event string, payload any) error {
	if w.fail {
		return errors.New("send buffer full")
	}
	w.pushes = append(w.pushes, recordedPush{event: event, payload: payload})
	return nil
}

func (w *fakeWire) messagesReceived(t *testing.T) []chat.Message {
	t.Helper()
	var out []chat.Message
	for _, p := range w.pushes {
		if p.event != chat.EventChatMessage {
			continue
		}
		msg, ok := p.payload.(chat.Message)
		require.True(t, ok, "chatMessage payload should be a chat.Message")
		out = append(out, msg)
	}
	return out
}

type routerFixture struct {
	store    *fakeStore
	groups   *fakeGroups
	registry *presence.Registry
	router   *chat.Router
	typing   *chat.TypingRelay
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	codec, err := cipher.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	store := newFakeStore()
	groups := &fakeGroups{members: map[string][]string{}}
	registry := presence.NewRegistry(nil)

	return &routerFixture{
		store:    store,
		groups:   groups,
		registry: registry,
		router:   chat.NewRouter(store, groups, codec, registry, nil),
		typing:   chat.NewTypingRelay(groups, registry, nil),
	}
}

func (f *routerFixture) connect(userID string) *fakeWire {
	w := &fakeWire{}
	f.registry.Register(userID, w)
	return w
}

func TestRouter_SendRejectsEmptyMessage(t *testing.T) {
	f := newRouterFixture(t)
	alice := f.connect("alice")

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := f.router.Send(context.Background(), "alice", chat.UserRecipient("bob"), content, alice)
		require.True(t, errors.Is(err, errs.NewError(errs.ErrEmptyMessage)), "content %q", content)
	}

	require.Empty(t, f.store.messages, "rejected sends must not be persisted")
	require.Empty(t, alice.pushes, "rejected sends must not be echoed")
}

func TestRouter_DirectSendDeliversAndEchoes(t *testing.T) {
	f := newRouterFixture(t)
	alice := f.connect("alice")
	bob := f.connect("bob")

	sent, err := f.router.Send(context.Background(), "alice", chat.UserRecipient("bob"), "hello bob", alice)
	require.NoError(t, err)
	require.Equal(t, "hello bob", sent.Content)
	require.Equal(t, chat.KindUser, sent.ReceiverKind)

	bobGot := bob.messagesReceived(t)
	require.Len(t, bobGot, 1)
	require.Equal(t, sent, bobGot[0])

	echo := alice.messagesReceived(t)
	require.Len(t, echo, 1)
	require.Equal(t, sent, echo[0])

	// At rest the content is ciphertext, never the plaintext.
	require.Len(t, f.store.messages, 1)
	require.NotEqual(t, "hello bob", f.store.messages[0].Content)
	require.Contains(t, f.store.messages[0].Content, cipher.Separator)
}

func TestRouter_DirectSendToOfflineUserStillPersists(t *testing.T) {
	f := newRouterFixture(t)
	alice := f.connect("alice")

	sent, err := f.router.Send(context.Background(), "alice", chat.UserRecipient("bob"), "are you there?", alice)
	require.NoError(t, err)

	require.Len(t, f.store.messages, 1)
	require.Len(t, alice.messagesReceived(t), 1)

	// Bob reconnects later and reconciles via history.
	history, err := f.router.History(context.Background(), "bob", "alice")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, sent, history[0])
}

func TestRouter_GroupFanOut(t *testing.T) {
	f := newRouterFixture(t)
	f.groups.members["sales"] = []string{"alice", "bob", "carol", "dave"}

	alice := f.connect("alice")
	carol := f.connect("carol")
	dave := f.connect("dave")
	// bob is offline.

	sent, err := f.router.Send(context.Background(), "alice", chat.GroupRecipient("sales"), "standup in 5", alice)
	require.NoError(t, err)
	require.Equal(t, chat.KindGroup, sent.ReceiverKind)

	require.Len(t, carol.messagesReceived(t), 1)
	require.Len(t, dave.messagesReceived(t), 1)
	require.Len(t, alice.messagesReceived(t), 1, "sender gets exactly one echo, not a member copy plus an echo")
	require.Len(t, f.store.messages, 1, "a group broadcast is one stored record")
}

func TestRouter_GroupNotFoundDeliversEchoOnly(t *testing.T) {
	f := newRouterFixture(t)
	alice := f.connect("alice")
	bob := f.connect("bob")

	sent, err := f.router.Send(context.Background(), "alice", chat.GroupRecipient("ghost"), "anyone home?", alice)
	require.NoError(t, err)

	require.Len(t, f.store.messages, 1, "the message is durable even when the group vanished")
	require.Len(t, alice.messagesReceived(t), 1)
	require.Empty(t, bob.pushes)
	require.Equal(t, "anyone home?", sent.Content)
}

func TestRouter_NilOriginSkipsEcho(t *testing.T) {
	f := newRouterFixture(t)
	bob := f.connect("bob")

	_, err := f.router.Send(context.Background(), "alice", chat.UserRecipient("bob"), "from the API", nil)
	require.NoError(t, err)

	require.Len(t, bob.messagesReceived(t), 1)
}

func TestRouter_FullSendBufferDoesNotFailTheSend(t *testing.T) {
	f := newRouterFixture(t)
	alice := f.connect("alice")
	bob := f.connect("bob")
	bob.fail = true

	_, err := f.router.Send(context.Background(), "alice", chat.UserRecipient("bob"), "hello", alice)
	require.NoError(t, err, "a dropped push must not fail the send")
	require.Len(t, f.store.messages, 1)
	require.Len(t, alice.messagesReceived(t), 1)
}

func TestRouter_HistoryOrderingAndSymmetry(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	m1, err := f.router.Send(ctx, "alice", chat.UserRecipient("bob"), "first", nil)
	require.NoError(t, err)
	m2, err := f.router.Send(ctx, "bob", chat.UserRecipient("alice"), "second", nil)
	require.NoError(t, err)

	// Unrelated traffic must not leak into the pair's history.
	_, err = f.router.Send(ctx, "alice", chat.UserRecipient("carol"), "other thread", nil)
	require.NoError(t, err)

	history, err := f.router.History(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, []chat.Message{m1, m2}, history)

	// Same conversation regardless of argument order.
	mirrored, err := f.router.History(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Equal(t, history, mirrored)
}

func TestRouter_GroupHistory(t *testing.T) {
	f := newRouterFixture(t)
	f.groups.members["sales"] = []string{"alice", "bob"}
	ctx := context.Background()

	m1, err := f.router.Send(ctx, "alice", chat.GroupRecipient("sales"), "kickoff", nil)
	require.NoError(t, err)
	m2, err := f.router.Send(ctx, "bob", chat.GroupRecipient("sales"), "on it", nil)
	require.NoError(t, err)
	_, err = f.router.Send(ctx, "alice", chat.UserRecipient("bob"), "side note", nil)
	require.NoError(t, err)

	history, err := f.router.GroupHistory(ctx, "sales")
	require.NoError(t, err)
	require.Equal(t, []chat.Message{m1, m2}, history)
}

func TestRouter_HistoryReplacesCorruptRecords(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	readable, err := f.router.Send(ctx, "alice", chat.UserRecipient("bob"), "still fine", nil)
	require.NoError(t, err)

	// A row whose ciphertext was damaged after the fact. The hex IV with a
	// non-hex tail cannot be a legacy plaintext record.
	_, err = f.store.Insert(ctx, "alice", chat.UserRecipient("bob"), strings.Repeat("ab", 16)+":nothex")
	require.NoError(t, err)

	history, err := f.router.History(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, readable, history[0])
	require.Equal(t, "[message unreadable]", history[1].Content)
}

func TestRouter_HistoryReturnsLegacyPlaintextUnchanged(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	// A record written before encryption at rest was introduced.
	_, err := f.store.Insert(ctx, "alice", chat.UserRecipient("bob"), "stored in the clear")
	require.NoError(t, err)

	history, err := f.router.History(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "stored in the clear", history[0].Content)
}

func TestTypingRelay_Direct(t *testing.T) {
	f := newRouterFixture(t)
	alice := f.connect("alice")
	bob := f.connect("bob")
	ctx := context.Background()

	f.typing.NotifyTyping(ctx, "alice", chat.UserRecipient("bob"), alice)

	require.Len(t, bob.pushes, 1)
	require.Equal(t, chat.EventDisplayTyping, bob.pushes[0].event)
	require.Equal(t, chat.TypingEventPayload{Sender: "alice"}, bob.pushes[0].payload)
	require.Empty(t, alice.pushes, "the typist never sees their own indicator")

	f.typing.NotifyStopTyping(ctx, "alice", chat.UserRecipient("bob"), alice)
	require.Len(t, bob.pushes, 2)
	require.Equal(t, chat.EventHideTyping, bob.pushes[1].event)
}

func TestTypingRelay_GroupExcludesOrigin(t *testing.T) {
	f := newRouterFixture(t)
	f.groups.members["sales"] = []string{"alice", "bob", "carol"}
	alice := f.connect("alice")
	bob := f.connect("bob")
	// carol is offline.

	f.typing.NotifyTyping(context.Background(), "alice", chat.GroupRecipient("sales"), alice)

	require.Len(t, bob.pushes, 1)
	require.Equal(t, chat.EventDisplayTyping, bob.pushes[0].event)
	require.Empty(t, alice.pushes)
}

func TestTypingRelay_MissingGroupIsSilent(t *testing.T) {
	f := newRouterFixture(t)
	alice := f.connect("alice")

	f.typing.NotifyTyping(context.Background(), "alice", chat.GroupRecipient("ghost"), alice)

	require.Empty(t, alice.pushes)
}

// End to end over the in-memory fakes: create a group conversation, exchange
// messages, drop a member's connection, and verify history reconciliation.
func TestGroupConversationScenario(t *testing.T) {
	f := newRouterFixture(t)
	f.groups.members["sales"] = []string{"alice", "bob", "carol"}
	ctx := context.Background()

	alice := f.connect("alice")
	bob := f.connect("bob")
	carol := f.connect("carol")

	first, err := f.router.Send(ctx, "alice", chat.GroupRecipient("sales"), "new lead in the pipeline", alice)
	require.NoError(t, err)

	// Carol disconnects mid-conversation.
	f.registry.Unregister(carol)

	second, err := f.router.Send(ctx, "bob", chat.GroupRecipient("sales"), "taking this one", bob)
	require.NoError(t, err)

	require.Equal(t, []chat.Message{first, second}, bob.messagesReceived(t))
	require.Equal(t, []chat.Message{first, second}, alice.messagesReceived(t))
	require.Equal(t, []chat.Message{first}, carol.messagesReceived(t), "no delivery after disconnect")

	// Carol reconciles the missed message from group history.
	history, err := f.router.GroupHistory(ctx, "sales")
	require.NoError(t, err)
	require.Equal(t, []chat.Message{first, second}, history)
}
