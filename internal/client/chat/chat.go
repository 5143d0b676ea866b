// Package chat answers dashboard questions with canned responses.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/client/query"
	"github.com/dmitrijs2005/statusboard/internal/textx"
)

const Fallback = "Desculpe, não entendi. Pergunte sobre ações, tarefas, prazos, atrasos, exportação ou filtros."

// Rule answers a message containing any of its keywords. Keywords are
// compared after folding case and accents. Answer, when set, takes
// precedence over Text and may use the current summary.
type Rule struct {
	Keywords []string
	Text     string
	Answer   func(query.Summary) string
}

func (r Rule) matches(folded string) bool {
	for _, k := range r.Keywords {
		if strings.Contains(folded, textx.Fold(k)) {
			return true
		}
	}
	return false
}

// SummaryFunc provides live counters for dynamic answers.
type SummaryFunc func(ctx context.Context) (query.Summary, error)

type Assistant struct {
	rules   []Rule
	summary SummaryFunc
}

// New returns an assistant with the given rules, or DefaultRules when none
// are given. summary may be nil.
func New(summary SummaryFunc, rules ...Rule) *Assistant {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Assistant{rules: rules, summary: summary}
}

// Reply returns the answer of the first matching rule, or Fallback.
func (a *Assistant) Reply(ctx context.Context, msg string) string {
	folded := textx.Fold(msg)
	if folded == "" {
		return Fallback
	}

	for _, r := range a.rules {
		if !r.matches(folded) {
			continue
		}
		if r.Answer != nil && a.summary != nil {
			if s, err := a.summary(ctx); err == nil {
				return r.Answer(s)
			}
		}
		if r.Text != "" {
			return r.Text
		}
	}
	return Fallback
}

func DefaultRules() []Rule {
	return []Rule{
		{
			Keywords: []string{"olá", "oi", "bom dia", "boa tarde", "boa noite"},
			Text:     "Olá! Sou o assistente do painel. Como posso ajudar?",
		},
		{
			Keywords: []string{"atrasad", "em atraso", "vencid"},
			Text:     "Ações em atraso aparecem com o status \"Em Atraso\". Use `filter` para listar apenas elas.",
			Answer: func(s query.Summary) string {
				return fmt.Sprintf("Há %d ação(ões) e %d tarefa(s) em atraso.",
					s.ByDelay[models.DelayOverdue], s.TasksByDelay[models.DelayOverdue])
			},
		},
		{
			Keywords: []string{"resumo", "progresso", "andamento geral", "quantas"},
			Text:     "Use `summary` para ver os totais por status e por setor.",
			Answer: func(s query.Summary) string {
				return fmt.Sprintf("%d ações, %d tarefas. %.0f%% das ações concluídas.",
					s.Actions, s.Tasks, s.CompletionRate()*100)
			},
		},
		{
			Keywords: []string{"criar", "nova ação", "adicionar", "cadastrar"},
			Text:     "Use `add` para criar uma ação e `addtask <id>` para incluir tarefas nela.",
		},
		{
			Keywords: []string{"prazo", "data", "vencimento"},
			Text:     "Datas usam o formato DD/MM/AAAA. Uma ação fica em atraso no dia seguinte ao prazo.",
		},
		{
			Keywords: []string{"exportar", "csv", "planilha", "relatorio"},
			Text:     "Use `export` para gerar um CSV na pasta de exportação, ou `export upload` para enviá-lo ao servidor.",
		},
		{
			Keywords: []string{"filtro", "filtrar", "buscar", "pesquisar"},
			Text:     "Use `filter` para filtrar por status, setor, responsável, texto ou período, e `sort` para ordenar.",
		},
		{
			Keywords: []string{"offline", "conexao", "servidor", "sincron"},
			Text:     "Sem conexão os dados ficam criptografados neste computador. Use `mode` para ver o modo atual.",
		},
		{
			Keywords: []string{"ajuda", "help", "comandos"},
			Text:     "Digite `help` para ver todos os comandos.",
		},
	}
}
