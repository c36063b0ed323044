package domain

// Topic is a curriculum category. Lessons are grouped by topic.
type Topic string

const (
	TopicVariables    Topic = "variables"
	TopicOperators    Topic = "operators"
	TopicConditionals Topic = "conditionals"
	TopicLoops        Topic = "loops"
	TopicFunctions    Topic = "functions"
	TopicLists        Topic = "lists"
	TopicDictionaries Topic = "dictionaries"
	TopicStrings      Topic = "strings"
	TopicFiles        Topic = "files"
	TopicClasses      Topic = "classes"
	TopicModules      Topic = "modules"
	TopicExceptions   Topic = "exceptions"
)

// TopicInfo holds display metadata for a topic.
type TopicInfo struct {
	Topic Topic  `json:"topic"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

var topics = []TopicInfo{
	{TopicVariables, "Variáveis", "📦"},
	{TopicOperators, "Operadores", "⚡"},
	{TopicConditionals, "Condicionais", "🔀"},
	{TopicLoops, "Loops", "🔄"},
	{TopicFunctions, "Funções", "⚙️"},
	{TopicLists, "Listas", "📋"},
	{TopicDictionaries, "Dicionários", "📚"},
	{TopicStrings, "Strings", "🔤"},
	{TopicFiles, "Arquivos", "📁"},
	{TopicClasses, "Classes", "🏗️"},
	{TopicModules, "Módulos", "📦"},
	{TopicExceptions, "Exceções", "⚠️"},
}

// Topics returns all topics in curriculum order.
func Topics() []TopicInfo {
	out := make([]TopicInfo, len(topics))
	copy(out, topics)
	return out
}

// LookupTopic returns display metadata for t.
func LookupTopic(t Topic) (TopicInfo, bool) {
	for _, info := range topics {
		if info.Topic == t {
			return info, true
		}
	}
	return TopicInfo{}, false
}

// Valid reports whether t is a known topic.
func (t Topic) Valid() bool {
	_, ok := LookupTopic(t)
	return ok
}

// Index returns the curriculum position of t, or -1 when unknown.
func (t Topic) Index() int {
	for i, info := range topics {
		if info.Topic == t {
			return i
		}
	}
	return -1
}
