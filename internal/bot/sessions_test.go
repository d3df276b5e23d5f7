package bot

import "testing"

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()

	if _, ok := store.Get(1); ok {
		t.Fatal("empty store returned a session")
	}

	store.Set(1, &Session{Flow: FlowReport, Step: StepReportReason})
	store.Set(2, &Session{Flow: FlowAFK, Step: StepAFKDays})

	sess, ok := store.Get(1)
	if !ok || sess.Flow != FlowReport {
		t.Errorf("session 1 = %+v", sess)
	}
	sess, ok = store.Get(2)
	if !ok || sess.Flow != FlowAFK {
		t.Errorf("session 2 = %+v", sess)
	}

	store.Clear(1)
	if _, ok := store.Get(1); ok {
		t.Error("session survived Clear")
	}
	if _, ok := store.Get(2); !ok {
		t.Error("Clear removed another user's session")
	}
}

func TestSingleShotReportParse(t *testing.T) {
	tests := []struct {
		text         string
		wantCategory string
		wantTarget   string
		wantReason   string
		wantOK       bool
	}{
		{"репорт чат: спамит ссылками", "chat", "", "спамит ссылками", true},
		{"Репорт бот: завис", "bot", "", "завис", true},
		{"репорт канал — реклама", "channel", "", "реклама", true},
		{"репорт канал @night_deals: сплошная реклама", "channel", "@night_deals", "сплошная реклама", true},
		{"репорт бот @helper_bot — не отвечает", "bot", "@helper_bot", "не отвечает", true},
		{"репорт чат:", "", "", "", false},
		{"репорт стол: сломался", "", "", "", false},
		{"просто сообщение", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			category, target, reason, ok := parseSingleShotReport(tt.text)
			if ok != tt.wantOK || category != tt.wantCategory || target != tt.wantTarget || reason != tt.wantReason {
				t.Errorf("parse = (%q, %q, %q, %v), want (%q, %q, %q, %v)",
					category, target, reason, ok, tt.wantCategory, tt.wantTarget, tt.wantReason, tt.wantOK)
			}
		})
	}
}
