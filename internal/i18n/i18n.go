package i18n

// Message catalogs keyed the way the error model raises them. Portuguese is
// the default locale; English is the fallback for keys missing from it.

const (
	LocalePTBR = "pt-BR"
	LocaleEN   = "en"
)

var ptBR = map[string]string{
	"error.login.invalido":   "Login ou senha inválidos",
	"error.email.cadastrado": "E-mail já cadastrado",
	"usuario.nao.encontrado": "Usuário não encontrado",
	"email.nao.encontrado":   "E-mail não encontrado",
	"token.invalido":         "Token inválido ou expirado",
	"token.malformado":       "Token malformado",
	"error.interno":          "Erro interno do servidor",
	"nome.obrigatorio":       "O nome é obrigatório",
	"senha.obrigatorio":      "A senha é obrigatória",
	"email.obrigatorio":      "O e-mail é obrigatório",
	"error.senha.curta":      "A senha deve ter no mínimo 8 caracteres",
	"error.email.invalido":   "E-mail inválido",
	"login.obrigatorio":      "O login é obrigatório",
}

var en = map[string]string{
	"error.login.invalido":   "Invalid login or password",
	"error.email.cadastrado": "Email already registered",
	"usuario.nao.encontrado": "User not found",
	"email.nao.encontrado":   "Email not found",
	"token.invalido":         "Invalid or expired token",
	"token.malformado":       "Malformed token",
	"error.interno":          "Internal server error",
	"nome.obrigatorio":       "Name is required",
	"senha.obrigatorio":      "Password is required",
	"email.obrigatorio":      "Email is required",
	"error.senha.curta":      "Password must be at least 8 characters",
	"error.email.invalido":   "Invalid email address",
	"login.obrigatorio":      "Login is required",
}

type Bundle struct {
	locale string
}

func New(locale string) *Bundle {
	if locale == "" {
		locale = LocalePTBR
	}
	return &Bundle{locale: locale}
}

// Message resolves key in the bundle's locale, falling back to English and
// finally to the key itself so unknown keys are still visible in responses.
func (b *Bundle) Message(key string) string {
	if b.locale == LocalePTBR {
		if msg, ok := ptBR[key]; ok {
			return msg
		}
	}
	if msg, ok := en[key]; ok {
		return msg
	}
	return key
}
