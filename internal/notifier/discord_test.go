package notifier

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/igreja-retiro/retiro-api/internal/fees"
	"github.com/igreja-retiro/retiro-api/internal/models"
)

type fakeSender struct {
	channelID string
	content   string
}

func (f *fakeSender) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channelID = channelID
	f.content = content
	return &discordgo.Message{}, nil
}

func TestNotifySubmission(t *testing.T) {
	sender := &fakeSender{}
	n := NewDiscordNotifier(sender, "chan-1")

	church := models.Church{Name: "Sião"}
	registrants := []models.Registrant{
		{RegistrantFields: models.RegistrantFields{FullName: "Ana"}, SleepAtRetreat: "sim", PaymentMethod: "pix"},
		{
			RegistrantFields: models.RegistrantFields{FullName: "Bruno"},
			SleepAtRetreat:   "nao",
			DaysCount:        2,
			SelectedDays:     []string{"2024-11-15", "2024-11-16"},
			PaymentMethod:    "dinheiro",
			FoodIntolerance:  "lactose",
		},
	}
	total := fees.Sum([]fees.Quote{{Fee: 190, PreFee: 15}, {Fee: 105, PreFee: 15}})

	if err := n.NotifySubmission(church, registrants, total); err != nil {
		t.Fatalf("NotifySubmission returned error: %v", err)
	}
	if sender.channelID != "chan-1" {
		t.Errorf("expected channel chan-1, got %s", sender.channelID)
	}

	for _, want := range []string{"Sião", "**Inscritos:** 2", "Ana (dorme no retiro, pix)", "2 dia(s): 2024-11-15, 2024-11-16", "lactose", "R$ 295", "R$ 30"} {
		if !strings.Contains(sender.content, want) {
			t.Errorf("expected message to contain %q, got:\n%s", want, sender.content)
		}
	}
}

func TestNotifySubmission_NotConfigured(t *testing.T) {
	if err := NewDiscordNotifier(nil, "chan").NotifySubmission(models.Church{}, nil, fees.Total{}); err == nil {
		t.Error("expected error for nil session")
	}
	if err := NewDiscordNotifier(&fakeSender{}, "").NotifySubmission(models.Church{}, nil, fees.Total{}); err == nil {
		t.Error("expected error for empty channel")
	}
}
