package app

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"moderation_relay_bot/internal/domain/ticket"
)

// fakeClient records every transport call and can inject per-chat failures.
// Safe for concurrent use: the decision tests hammer it from goroutines.
type fakeClient struct {
	mu sync.Mutex

	failSendTo    map[int64]error
	failForwardTo map[int64]error

	sent     []fakeSent
	forwards []fakeForward
	edits    []fakeEdit

	nextMessageID int
}

type fakeSent struct {
	ChatID int64
	Text   string
}

type fakeForward struct {
	Dest int64
	Src  ticket.MessageRef
}

type fakeEdit struct {
	Ref  ticket.MessageRef
	Text string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		failSendTo:    make(map[int64]error),
		failForwardTo: make(map[int64]error),
	}
}

func (f *fakeClient) SendMessage(chatID int64, text string, _ *telebot.SendOptions) (ticket.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failSendTo[chatID]; err != nil {
		return ticket.MessageRef{}, err
	}
	f.nextMessageID++
	f.sent = append(f.sent, fakeSent{ChatID: chatID, Text: text})
	return ticket.MessageRef{ChatID: chatID, MessageID: f.nextMessageID}, nil
}

func (f *fakeClient) ForwardMessage(dest int64, src ticket.MessageRef) (ticket.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failForwardTo[dest]; err != nil {
		return ticket.MessageRef{}, err
	}
	f.nextMessageID++
	f.forwards = append(f.forwards, fakeForward{Dest: dest, Src: src})
	return ticket.MessageRef{ChatID: dest, MessageID: f.nextMessageID}, nil
}

func (f *fakeClient) EditMessage(ref ticket.MessageRef, text string, _ *telebot.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, fakeEdit{Ref: ref, Text: text})
	return nil
}

func (f *fakeClient) BotLink() string { return "https://t.me/relay_bot" }

func (f *fakeClient) sentTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, s := range f.sent {
		if s.ChatID == chatID {
			texts = append(texts, s.Text)
		}
	}
	return texts
}

func (f *fakeClient) editsFor(ref ticket.MessageRef) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, e := range f.edits {
		if e.Ref == ref {
			texts = append(texts, e.Text)
		}
	}
	return texts
}

func (f *fakeClient) forwardCount(dest int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, fw := range f.forwards {
		if fw.Dest == dest {
			n++
		}
	}
	return n
}

func containsAll(text string, parts ...string) error {
	for _, p := range parts {
		if !strings.Contains(text, p) {
			return fmt.Errorf("text %q missing %q", text, p)
		}
	}
	return nil
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}
