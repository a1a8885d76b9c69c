package form

import (
	"github.com/shopspring/decimal"
)

// Changes é um conjunto parcial de edições; campos nil não são tocados.
type Changes struct {
	Name      *string          `json:"name,omitempty"`
	AgeText   *string          `json:"ageText,omitempty"`
	Sex       *Sex             `json:"sex,omitempty"`
	Limit     *decimal.Decimal `json:"limit,omitempty"`
	IsStudent *bool            `json:"isStudent,omitempty"`
}

// Empty informa se nenhuma edição foi pedida.
func (c Changes) Empty() bool {
	return c.Name == nil && c.AgeText == nil && c.Sex == nil && c.Limit == nil && c.IsStudent == nil
}

// SubmitResult é o resultado de Submit: um resumo (aceito) ou as mensagens (rejeitado).
type SubmitResult struct {
	Summary  *AccountSummary
	Errors   Errors
	Messages []string
}

// Accepted informa se a submissão produziu um resumo.
func (r SubmitResult) Accepted() bool {
	return r.Summary != nil
}

// Controller é dono dos campos de uma sessão de formulário.
// Revalida ao fim de cada setter e no início de Submit; não é seguro para
// uso concorrente (o chamador serializa os eventos da sessão).
type Controller struct {
	validator *Validator
	fields    Fields
	errors    Errors
	ready     bool
	summary   *AccountSummary
}

// Option configura um Controller.
type Option func(*Controller)

// WithValidator troca o validador (ex.: mensagens em pt-BR).
func WithValidator(v *Validator) Option {
	return func(c *Controller) {
		if v != nil {
			c.validator = v
		}
	}
}

// NewController inicia uma sessão com os valores padrão, já validados:
// o estado inicial é incompleto (idade e sexo vazios).
func NewController(opts ...Option) *Controller {
	c := &Controller{
		validator: defaultValidator,
		fields:    DefaultFields(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Revalidate()
	return c
}

func (c *Controller) SetName(name string) {
	c.fields.Name = name
	c.Revalidate()
}

func (c *Controller) SetAgeText(ageText string) {
	c.fields.AgeText = ageText
	c.Revalidate()
}

func (c *Controller) SetSex(sex Sex) {
	c.fields.Sex = sex
	c.Revalidate()
}

// SetLimit aceita qualquer valor; a faixa é conferida pelo validador.
func (c *Controller) SetLimit(limit decimal.Decimal) {
	c.fields.Limit = limit
	c.Revalidate()
}

func (c *Controller) SetStudent(student bool) {
	c.fields.IsStudent = &student
	c.Revalidate()
}

// Apply aplica as edições presentes em ch, na ordem dos campos, como chamadas de setter.
func (c *Controller) Apply(ch Changes) Errors {
	if ch.Name != nil {
		c.SetName(*ch.Name)
	}
	if ch.AgeText != nil {
		c.SetAgeText(*ch.AgeText)
	}
	if ch.Sex != nil {
		c.SetSex(*ch.Sex)
	}
	if ch.Limit != nil {
		c.SetLimit(*ch.Limit)
	}
	if ch.IsStudent != nil {
		c.SetStudent(*ch.IsStudent)
	}
	if ch.Empty() {
		c.Revalidate()
	}
	return c.Errors()
}

// Revalidate recalcula os erros a partir dos campos atuais. Idempotente.
func (c *Controller) Revalidate() Errors {
	c.errors = c.validator.Validate(c.fields)
	c.ready = len(c.errors) == 0
	return c.errors.Clone()
}

// Submit revalida; se houver erro devolve as mensagens e não altera nada.
// Caso contrário cria um novo resumo que substitui o anterior.
func (c *Controller) Submit() SubmitResult {
	errs := c.Revalidate()
	if len(errs) > 0 {
		return SubmitResult{Errors: errs, Messages: errs.Messages()}
	}

	summary := newSummary(c.fields)
	c.summary = &summary

	out := summary
	return SubmitResult{Summary: &out, Errors: Errors{}}
}

// Fields devolve uma cópia dos campos atuais.
func (c *Controller) Fields() Fields {
	return c.fields.clone()
}

// Errors devolve uma cópia dos erros atuais.
func (c *Controller) Errors() Errors {
	return c.errors.Clone()
}

// Ready informa se a submissão está liberada.
func (c *Controller) Ready() bool {
	return c.ready
}

// Summary devolve o último resumo produzido, se houver.
func (c *Controller) Summary() (AccountSummary, bool) {
	if c.summary == nil {
		return AccountSummary{}, false
	}
	return *c.summary, true
}

// Validator devolve o validador (e portanto o idioma) desta sessão.
func (c *Controller) Validator() *Validator {
	return c.validator
}
