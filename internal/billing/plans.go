package billing

// Plan - тариф из статического каталога
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        int64    `json:"price"` // USD в месяц
	MonthlyLimit int      `json:"monthlyLimit"`
	Features     []string `json:"features"`
}

// UnitAmount - цена в центах для Stripe
func (p Plan) UnitAmount() int64 {
	return p.Price * 100
}

var plans = map[string]Plan{
	"starter": {
		ID:           "starter",
		Name:         "Starter",
		Price:        29,
		MonthlyLimit: 50,
		Features:     []string{"Blog posts", "Social media content", "Basic SEO", "Email support"},
	},
	"professional": {
		ID:           "professional",
		Name:         "Professional",
		Price:        79,
		MonthlyLimit: 200,
		Features:     []string{"All Starter features", "Email campaigns", "Advanced SEO", "Priority support", "Analytics"},
	},
	"enterprise": {
		ID:           "enterprise",
		Name:         "Enterprise",
		Price:        199,
		MonthlyLimit: 1000,
		Features:     []string{"All Professional features", "Custom AI training", "API access", "Dedicated support", "White-label"},
	},
}

// Plans возвращает копию каталога, ключ - ID тарифа
func Plans() map[string]Plan {
	out := make(map[string]Plan, len(plans))
	for id, p := range plans {
		p.Features = append([]string(nil), p.Features...)
		out[id] = p
	}
	return out
}

// LookupPlan ищет тариф по ID
func LookupPlan(id string) (Plan, bool) {
	p, ok := plans[id]
	if !ok {
		return Plan{}, false
	}
	p.Features = append([]string(nil), p.Features...)
	return p, true
}
