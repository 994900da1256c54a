// Package locale holds the message catalog for user-facing labels and toasts.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supported = []language.Tag{
	language.English,
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(supported)

func init() {
	pt := language.BrazilianPortuguese

	// Kind labels
	message.SetString(pt, "Movie", "Filme")
	message.SetString(pt, "Series", "Série")
	message.SetString(pt, "Other", "Outro")
	message.SetString(pt, "Season %d", "Temporada %d")

	// Loading indicators
	message.SetString(pt, "Searching...", "Pesquisando...")
	message.SetString(pt, "Deleting...", "Excluindo...")
	message.SetString(pt, "Saving...", "Salvando...")
	message.SetString(pt, "Signing in...", "Autenticando...")

	// Failures
	message.SetString(pt, "Failed to query repertoire: code %d", "Falha ao consultar repertórios: código %d")
	message.SetString(pt, "Failed to query repertoire: %v", "Falha ao consultar repertórios: %v")
	message.SetString(pt, "Failed to delete entry: code %d", "Falha ao excluir o repertório: código %d")
	message.SetString(pt, "Failed to delete entry: %v", "Falha ao excluir o repertório: %v")
	message.SetString(pt, "Failed to save entry: code %d", "Falha ao salvar o repertório: código %d")
	message.SetString(pt, "Failed to save entry: %v", "Falha ao salvar o repertório: %v")
	message.SetString(pt, "Failed to sign in: code %d", "Falha na autenticação: código %d")
	message.SetString(pt, "Failed to sign in: %v", "Falha na autenticação: %v")
	message.SetString(pt, "Invalid entry: %v", "Repertório inválido: %v")
}

// Parse resolves a language name such as "pt-BR" or "en" to the closest
// supported tag. Unknown names fall back to English.
func Parse(name string) language.Tag {
	if name == "" {
		return language.English
	}
	tag, err := language.Parse(name)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Printer returns a message printer for tag
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}
