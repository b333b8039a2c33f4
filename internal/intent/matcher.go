package intent

import (
	"fmt"
	"strings"

	"github.com/kisite/chatbot-gateway/internal/knowledge"
)

// Rule pairs a keyword predicate with a response template. Rules are
// evaluated in declaration order and the first match wins, so rules with
// overlapping keywords must be declared most-specific-first (the essential
// site rule must run before the generic services rule, for example).
type Rule struct {
	Topic   string
	Match   func(lowered string) bool
	Respond func(kb *knowledge.Base) string
}

type Matcher struct {
	rules []Rule
}

// New builds the default FAQ rule table.
func New() *Matcher {
	return &Matcher{rules: defaultRules()}
}

// Match tests the lowercased message against the rule table. It is a pure
// function of the message and the knowledge snapshot; ok=false means no rule
// matched and the caller should fall back to the completion service.
func (m *Matcher) Match(message string, kb *knowledge.Base) (string, bool) {
	lowered := strings.ToLower(message)
	for _, rule := range m.rules {
		if rule.Match(lowered) {
			return rule.Respond(kb), true
		}
	}
	return "", false
}

// Topics lists the rule topics in evaluation order.
func (m *Matcher) Topics() []string {
	topics := make([]string, 0, len(m.rules))
	for _, rule := range m.rules {
		topics = append(topics, rule.Topic)
	}
	return topics
}

func defaultRules() []Rule {
	return []Rule{
		{
			Topic: "essential_site",
			Match: either(
				anyOf("site essencial"),
				allOf("site", "básico"),
			),
			Respond: respondEssentialSite,
		},
		{
			Topic:   "smart_agent",
			Match:   anyOf("agente inteligente", "assistente virtual", "chatbot", "atendimento automático"),
			Respond: respondSmartAgent,
		},
		{
			Topic:   "bundle",
			Match:   anyOf("integração", "site e agente", "solução completa"),
			Respond: respondBundle,
		},
		{
			Topic:   "company",
			Match:   anyOf("o que a kisite faz", "me fale sobre a kisite", "quem é a kisite", "sobre a empresa"),
			Respond: respondCompany,
		},
		{
			Topic:   "services",
			Match:   anyOf("serviços", "o que vocês oferecem", "soluções", "produtos"),
			Respond: respondServices,
		},
		{
			Topic:   "contact",
			Match:   anyOf("contato", "como entrar em contato", "email", "telefone", "falar com alguém"),
			Respond: respondContact,
		},
		{
			Topic:   "pricing",
			Match:   anyOf("preço", "valor", "quanto custa", "investimento"),
			Respond: respondPricing,
		},
		{
			Topic:   "statistics",
			Match:   anyOf("estatística", "resultado", "eficácia", "dados de clientes"),
			Respond: respondStatistics,
		},
		{
			Topic:   "extras",
			Match:   anyOf("funcionalidade", "recurso adicional", "opção extra", "outros serviços"),
			Respond: respondExtras,
		},
		{
			Topic:   "delivery",
			Match:   anyOf("prazo", "quanto tempo leva", "quando fica pronto"),
			Respond: respondDelivery,
		},
	}
}

func anyOf(keywords ...string) func(string) bool {
	return func(lowered string) bool {
		for _, keyword := range keywords {
			if strings.Contains(lowered, keyword) {
				return true
			}
		}
		return false
	}
}

func allOf(keywords ...string) func(string) bool {
	return func(lowered string) bool {
		for _, keyword := range keywords {
			if !strings.Contains(lowered, keyword) {
				return false
			}
		}
		return true
	}
}

func either(predicates ...func(string) bool) func(string) bool {
	return func(lowered string) bool {
		for _, predicate := range predicates {
			if predicate(lowered) {
				return true
			}
		}
		return false
	}
}

func respondCompany(kb *knowledge.Base) string {
	if kb.Company != nil && strings.TrimSpace(kb.Company.About) != "" {
		return kb.Company.About
	}
	return "Somos uma empresa de soluções digitais. Fale conosco para saber mais."
}

func respondServices(kb *knowledge.Base) string {
	if kb.Services != nil && len(kb.Services.Categories) > 0 {
		return fmt.Sprintf("A %s oferece os seguintes serviços: %s", kb.CompanyName(), strings.Join(kb.Services.Categories, ", "))
	}
	return fmt.Sprintf("A %s oferece soluções digitais sob medida. Entre em contato para conhecer o catálogo completo.", kb.CompanyName())
}

func respondContact(kb *knowledge.Base) string {
	if kb.Company != nil && strings.TrimSpace(kb.Company.Contact) != "" {
		return kb.Company.Contact
	}
	return "Entre em contato conosco pelos nossos canais oficiais e retornaremos o quanto antes."
}

func respondPricing(kb *knowledge.Base) string {
	if kb.EssentialSite != nil && strings.TrimSpace(kb.EssentialSite.Price) != "" {
		return fmt.Sprintf(
			"O %s da %s tem um investimento de %s. Para informações sobre outros serviços, entre em contato conosco.",
			productName(kb.EssentialSite, "Site Essencial"), kb.CompanyName(), kb.EssentialSite.Price,
		)
	}
	return "Nossos preços variam conforme o projeto. Entre em contato para um orçamento sem compromisso."
}

func respondEssentialSite(kb *knowledge.Base) string {
	product := kb.EssentialSite
	if product == nil || strings.TrimSpace(product.Description) == "" {
		return "O Site Essencial é o nosso pacote de entrada para presença digital profissional. Fale conosco para detalhes."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s.\n", productName(product, "Site Essencial"), product.Description)
	if len(product.Features) > 0 {
		fmt.Fprintf(&b, "Características: %s.\n", strings.Join(product.Features, ", "))
	}
	if strings.TrimSpace(product.Price) != "" {
		fmt.Fprintf(&b, "Investimento: %s.", product.Price)
	}
	return strings.TrimSpace(b.String())
}

func respondSmartAgent(kb *knowledge.Base) string {
	product := kb.SmartAgent
	if product == nil || strings.TrimSpace(product.Description) == "" {
		return "O Agente Inteligente é o nosso assistente de atendimento com IA. Fale conosco para uma demonstração."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s.\n", productName(product, "Agente Inteligente"), product.Description)
	if len(product.Features) > 0 {
		fmt.Fprintf(&b, "Benefícios: %s.", strings.Join(product.Features, ", "))
	}
	return strings.TrimSpace(b.String())
}

func respondBundle(kb *knowledge.Base) string {
	product := kb.Bundle
	if product == nil || strings.TrimSpace(product.Description) == "" {
		return "A Integração Estratégica combina site profissional e atendimento com IA em uma única solução."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s.\n", productName(product, "Integração Estratégica"), product.Description)
	if len(product.Features) > 0 {
		fmt.Fprintf(&b, "Benefícios: %s.", strings.Join(product.Features, ", "))
	}
	return strings.TrimSpace(b.String())
}

func respondStatistics(kb *knowledge.Base) string {
	stats := kb.Statistics
	if stats == nil {
		return "Nossos clientes registram ganhos expressivos de presença digital. Peça nossos números em uma conversa."
	}
	lines := []string{"Nossas estatísticas mostram que:"}
	for _, item := range []string{stats.SmartphoneUsage, stats.LeadIncrease, stats.ConversionRate} {
		if strings.TrimSpace(item) != "" {
			lines = append(lines, "- "+item)
		}
	}
	if len(lines) == 1 {
		return "Nossos clientes registram ganhos expressivos de presença digital. Peça nossos números em uma conversa."
	}
	return strings.Join(lines, "\n")
}

func respondExtras(kb *knowledge.Base) string {
	if len(kb.Extras) > 0 {
		return fmt.Sprintf(
			"Além dos serviços principais, a %s oferece as seguintes funcionalidades adicionais: %s.",
			kb.CompanyName(), strings.Join(kb.Extras, ", "),
		)
	}
	return "Oferecemos funcionalidades adicionais sob demanda. Conte-nos o que seu projeto precisa."
}

func respondDelivery(kb *knowledge.Base) string {
	return kb.DeliverySentence()
}

func productName(product *knowledge.Product, fallback string) string {
	if product != nil && strings.TrimSpace(product.Name) != "" {
		return strings.TrimSpace(product.Name)
	}
	return fallback
}
