package notifier

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/igreja-retiro/retiro-api/internal/fees"
	"github.com/igreja-retiro/retiro-api/internal/models"
)

type Notifier interface {
	NotifySubmission(church models.Church, registrants []models.Registrant, total fees.Total) error
}

// MessageSender is the part of a discordgo session the notifier uses.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   MessageSender
	channelID string
}

func NewDiscordNotifier(session MessageSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifySubmission(church models.Church, registrants []models.Registrant, total fees.Total) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, FormatSubmission(church, registrants, total))
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}

// FormatSubmission renders the channel message for one submission.
func FormatSubmission(church models.Church, registrants []models.Registrant, total fees.Total) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🙏 **Nova inscrição**\n**Igreja:** %s\n**Inscritos:** %d\n", church.Name, len(registrants))
	for _, r := range registrants {
		stay := "dorme no retiro"
		if r.SleepAtRetreat == models.SleepAtRetreatNo {
			stay = fmt.Sprintf("%d dia(s): %s", r.DaysCount, strings.Join(r.SelectedDays, ", "))
		}
		fmt.Fprintf(&b, "• %s (%s, %s)", r.FullName, stay, r.PaymentMethod)
		if r.FoodIntolerance != "" {
			fmt.Fprintf(&b, " 🍽️ %s", r.FoodIntolerance)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "**Total:** R$ %d (pré-inscrição R$ %d)", total.Fee, total.PreFee)
	return b.String()
}
