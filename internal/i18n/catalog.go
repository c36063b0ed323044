package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys shared by the validator and the mock runner.
const (
	MsgEmptyCode           = "Write some code to continue!"
	MsgEmptyCodeError      = "Empty code"
	MsgEmptyCodeSuggestion = "Try writing a line of Python code"

	MsgVar01Missing           = `You need to create a variable called "meu_nome"`
	MsgVar01MissingError      = "Variable meu_nome not found"
	MsgVar01MissingSuggestion = `Use: meu_nome = "Your Name"`
	MsgVar01Print             = "You need to use print() to display the variable's value"
	MsgVar01PrintError        = "print command not found"
	MsgVar01PrintSuggestion   = "Use: print(meu_nome)"
	MsgVar01Quotes            = "Remember to use quotes to create a string"
	MsgVar01QuotesError       = "String without quotes"
	MsgVar01QuotesSuggestion  = `Use quotes: "your name" or 'your name'`
	MsgVar01Success           = "🎉 Perfect! You created your first variable and displayed it!"

	MsgVar02Dimensions           = "You need to create variables for largura and altura"
	MsgVar02DimensionsError      = "Variables largura and/or altura not found"
	MsgVar02DimensionsSuggestion = "Use: largura = 10 and altura = 5"
	MsgVar02Area                 = "You need to compute the area by multiplying largura * altura"
	MsgVar02AreaError            = "Area calculation not found"
	MsgVar02AreaSuggestion       = "Use: area = largura * altura"
	MsgVar02Print                = "You need to display the area result"
	MsgVar02PrintError           = "Area print not found"
	MsgVar02PrintSuggestion      = `Use: print(area) or print("Area:", area)`
	MsgVar02Success              = "🎉 Excellent! You computed the area correctly using variables!"

	MsgGenericProblems            = "There are some problems in your code"
	MsgGenericSuccess             = "✅ Valid code! Congratulations!"
	MsgUnbalancedParens           = "Unbalanced parentheses"
	MsgUnbalancedParensSuggestion = "Check that every parenthesis is closed correctly"
	MsgUnclosedParens             = "Unclosed parentheses"
	MsgUnclosedParensSuggestion   = "Close every opened parenthesis"
	MsgIndentation                = "Line %d: incorrect indentation"
	MsgIndentationSuggestion      = "Use 4 spaces for indentation in Python"
	MsgExpectedCode               = "Code does not contain the expected elements"
	MsgExpectedCodeSuggestion     = "Try including: %s"

	MsgExecuted       = "Code executed successfully!"
	MsgExecutionError = "Execution error: %s"
	MsgUnknownError   = "unknown error"
)

// Achievement titles and descriptions.
const (
	MsgAchFirstLesson       = "First steps"
	MsgAchFirstLessonDesc   = "Completed your first lesson"
	MsgAchTopicComplete     = "%s mastered"
	MsgAchTopicCompleteDesc = "Completed every lesson in %s"
	MsgAchFirstTry          = "Nailed it"
	MsgAchFirstTryDesc      = "Solved an exercise on the first try"
	MsgAchNoHints           = "On your own"
	MsgAchNoHintsDesc       = "Solved an exercise without hints"
	MsgAchStreak            = "%d-day streak"
	MsgAchStreakDesc        = "Practiced %d days in a row"
)

var portuguese = map[string]string{
	MsgEmptyCode:           "Escreva algum código para continuar!",
	MsgEmptyCodeError:      "Código vazio",
	MsgEmptyCodeSuggestion: "Tente escrever uma linha de código Python",

	MsgVar01Missing:           `Você precisa criar uma variável chamada "meu_nome"`,
	MsgVar01MissingError:      "Variável meu_nome não encontrada",
	MsgVar01MissingSuggestion: `Use: meu_nome = "Seu Nome"`,
	MsgVar01Print:             "Você precisa usar print() para exibir o valor da variável",
	MsgVar01PrintError:        "Comando print não encontrado",
	MsgVar01PrintSuggestion:   "Use: print(meu_nome)",
	MsgVar01Quotes:            "Lembre-se de usar aspas para criar uma string",
	MsgVar01QuotesError:       "String sem aspas",
	MsgVar01QuotesSuggestion:  `Use aspas: "seu nome" ou 'seu nome'`,
	MsgVar01Success:           "🎉 Perfeito! Você criou sua primeira variável e a exibiu na tela!",

	MsgVar02Dimensions:           "Você precisa criar variáveis para largura e altura",
	MsgVar02DimensionsError:      "Variáveis largura e/ou altura não encontradas",
	MsgVar02DimensionsSuggestion: "Use: largura = 10 e altura = 5",
	MsgVar02Area:                 "Você precisa calcular a área multiplicando largura * altura",
	MsgVar02AreaError:            "Cálculo da área não encontrado",
	MsgVar02AreaSuggestion:       "Use: area = largura * altura",
	MsgVar02Print:                "Você precisa exibir o resultado da área",
	MsgVar02PrintError:           "Print da área não encontrado",
	MsgVar02PrintSuggestion:      `Use: print(area) ou print("Área:", area)`,
	MsgVar02Success:              "🎉 Excelente! Você calculou a área corretamente usando variáveis!",

	MsgGenericProblems:            "Há alguns problemas no seu código",
	MsgGenericSuccess:             "✅ Código válido! Parabéns!",
	MsgUnbalancedParens:           "Parênteses não balanceados",
	MsgUnbalancedParensSuggestion: "Verifique se todos os parênteses estão fechados corretamente",
	MsgUnclosedParens:             "Parênteses não fechados",
	MsgUnclosedParensSuggestion:   "Feche todos os parênteses abertos",
	MsgIndentation:                "Linha %d: Indentação incorreta",
	MsgIndentationSuggestion:      "Use 4 espaços para indentação em Python",
	MsgExpectedCode:               "Código não contém elementos esperados",
	MsgExpectedCodeSuggestion:     "Tente incluir: %s",

	MsgExecuted:       "Código executado com sucesso!",
	MsgExecutionError: "Erro na execução: %s",
	MsgUnknownError:   "Erro desconhecido",

	MsgAchFirstLesson:       "Primeiros passos",
	MsgAchFirstLessonDesc:   "Completou sua primeira lição",
	MsgAchTopicComplete:     "%s dominado",
	MsgAchTopicCompleteDesc: "Completou todas as lições de %s",
	MsgAchFirstTry:          "De primeira",
	MsgAchFirstTryDesc:      "Resolveu um exercício na primeira tentativa",
	MsgAchNoHints:           "Por conta própria",
	MsgAchNoHintsDesc:       "Resolveu um exercício sem dicas",
	MsgAchStreak:            "Sequência de %d dias",
	MsgAchStreakDesc:        "Praticou %d dias seguidos",
}

func init() {
	for key, msg := range portuguese {
		if err := message.SetString(language.BrazilianPortuguese, key, msg); err != nil {
			panic("i18n: register " + key + ": " + err.Error())
		}
	}
}
