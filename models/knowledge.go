package models

// KnowledgeDoc represents a curated compliance circular in the knowledge base.
// Docs are loaded once at process start and immutable for the process lifetime.
type KnowledgeDoc struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Guidance string `json:"guidance"`
}

// GuidanceMatch pairs a knowledge doc with its similarity score for a query
type GuidanceMatch struct {
	Doc   KnowledgeDoc `json:"doc"`
	Score float64      `json:"score"`
}
