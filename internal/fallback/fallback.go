package fallback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kisite/chatbot-gateway/internal/history"
	"github.com/kisite/chatbot-gateway/internal/knowledge"
	"github.com/kisite/chatbot-gateway/internal/llm"
)

// Apology is returned whenever the completion call fails; the chat flow
// never surfaces an error to the end user.
const Apology = "Desculpe, não consegui processar sua mensagem. Nossa equipe técnica foi notificada do problema."

const closingDirective = "Responda de forma natural e amigável, mantendo o contexto da conversa. " +
	"Mantenha-se sempre no papel de assistente da empresa, use argumentos persuasivos e, " +
	"quando o cliente demonstrar interesse, sugira uma consultoria gratuita."

// Service answers messages no FAQ rule matched, delegating to an external
// completion endpoint with a bounded per-user conversation history.
type Service struct {
	kb        *knowledge.Base
	history   *history.Store
	completer llm.Completer
	logger    *slog.Logger
}

func New(kb *knowledge.Base, historyStore *history.Store, completer llm.Completer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		kb:        kb,
		history:   historyStore,
		completer: completer,
		logger:    logger,
	}
}

// Respond runs one fallback exchange for the user. It always returns a
// usable reply: internal failures are logged and degrade to the apology.
func (s *Service) Respond(ctx context.Context, userID, message string) string {
	s.history.Append(userID, llm.Message{Role: llm.RoleUser, Content: message})

	reply, err := s.completer.Complete(ctx, s.systemPrompt(), s.history.Snapshot(userID))
	if err != nil {
		s.logger.Error("completion fallback failed",
			"error", err,
			"user_id", userID,
			"message", truncate(message, 100),
		)
		return Apology
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		s.logger.Error("completion fallback returned empty reply", "user_id", userID)
		return Apology
	}

	s.history.Append(userID, llm.Message{Role: llm.RoleAssistant, Content: reply})
	return reply
}

// History exposes the user's rolling context for the chat API response.
func (s *Service) History(userID string) []llm.Message {
	return s.history.Snapshot(userID)
}

// ClearHistory drops the user's rolling context. Idempotent.
func (s *Service) ClearHistory(userID string) {
	s.history.Clear(userID)
	s.logger.Info("conversation history cleared", "user_id", userID)
}

// systemPrompt assembles the assistant persona from knowledge base facts.
// Missing topics degrade to generic hard-coded facts so the persona is
// always coherent.
func (s *Service) systemPrompt() string {
	kb := s.kb
	name := kb.CompanyName()

	var b strings.Builder
	if kb.Company != nil && strings.TrimSpace(kb.Company.About) != "" {
		fmt.Fprintf(&b, "Você é um assistente virtual da %s. %s ", name, strings.TrimSpace(kb.Company.About))
	} else {
		fmt.Fprintf(&b, "Você é um assistente virtual da %s, uma empresa de soluções digitais para pequenas e médias empresas. ", name)
	}

	if kb.Services != nil && len(kb.Services.Categories) > 0 {
		fmt.Fprintf(&b, "A empresa atua em: %s. ", strings.Join(kb.Services.Categories, ", "))
	} else {
		b.WriteString("A empresa atua em desenvolvimento web e atendimento com IA. ")
	}

	if site := kb.EssentialSite; site != nil && strings.TrimSpace(site.Price) != "" {
		fmt.Fprintf(&b, "O produto principal, %s, custa %s", productName(site, "Site Essencial"), site.Price)
		if site.DeliveryDays > 0 {
			fmt.Fprintf(&b, " e é entregue em %d dias úteis", site.DeliveryDays)
		}
		if strings.TrimSpace(site.Description) != "" {
			fmt.Fprintf(&b, " (%s)", strings.TrimSpace(site.Description))
		}
		b.WriteString(". ")
	} else {
		b.WriteString("O produto principal é um website profissional com entrega rápida. ")
	}

	if agent := kb.SmartAgent; agent != nil && strings.TrimSpace(agent.Description) != "" {
		fmt.Fprintf(&b, "Também oferecemos o %s: %s. ", productName(agent, "Agente Inteligente"), strings.TrimSpace(agent.Description))
	} else {
		b.WriteString("Também oferecemos um agente de atendimento com IA. ")
	}

	if bundle := kb.Bundle; bundle != nil && strings.TrimSpace(bundle.Description) != "" {
		fmt.Fprintf(&b, "A oferta combinada %s: %s. ", productName(bundle, "Integração Estratégica"), strings.TrimSpace(bundle.Description))
	} else {
		b.WriteString("Site e agente também são vendidos como uma oferta combinada. ")
	}

	if stats := kb.Statistics; stats != nil {
		facts := make([]string, 0, 3)
		for _, item := range []string{stats.SmartphoneUsage, stats.LeadIncrease, stats.ConversionRate} {
			if strings.TrimSpace(item) != "" {
				facts = append(facts, strings.TrimSpace(item))
			}
		}
		if len(facts) > 0 {
			fmt.Fprintf(&b, "Resultados de clientes: %s. ", strings.Join(facts, "; "))
		}
	} else {
		b.WriteString("Nossos clientes registram ganhos expressivos de presença digital. ")
	}

	b.WriteString(closingDirective)
	return b.String()
}

func productName(product *knowledge.Product, fallbackName string) string {
	if product != nil && strings.TrimSpace(product.Name) != "" {
		return strings.TrimSpace(product.Name)
	}
	return fallbackName
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max] + "..."
}
