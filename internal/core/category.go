package core

var (
	expenseCategories = []string{
		"Alimentação",
		"Aluguel",
		"Animais de Estimação",
		"Cuidados Pessoais",
		"Educação",
		"Impostos e Taxas",
		"Lazer",
		"Mercado",
		"Moradia",
		"Outro",
		"Saúde",
		"Transporte",
	}

	incomeCategories = []string{
		"Consultoria",
		"Depósitos",
		"Freelance",
		"Outros",
		"Bonificações",
		"Renda Passiva",
		"Rendimentos de Investimentos",
		"Salário",
		"Vendas",
	}
)

// CategoriesFor returns a copy of the vocabulary for t. An unset type
// returns both vocabularies, expenses first.
func CategoriesFor(t TransactionType) []string {
	switch t {
	case Income:
		return append([]string(nil), incomeCategories...)
	case Expense:
		return append([]string(nil), expenseCategories...)
	default:
		out := make([]string, 0, len(expenseCategories)+len(incomeCategories))
		out = append(out, expenseCategories...)
		return append(out, incomeCategories...)
	}
}

func IsValidCategory(t TransactionType, category string) bool {
	var list []string
	switch t {
	case Income:
		list = incomeCategories
	case Expense:
		list = expenseCategories
	default:
		return false
	}
	for _, c := range list {
		if c == category {
			return true
		}
	}
	return false
}
