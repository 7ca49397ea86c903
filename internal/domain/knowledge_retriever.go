package domain

import "context"

// KnowledgeRetriever looks up semantically relevant document snippets from
// the external knowledge corpus for a free-text query. Results come back in
// provider rank order.
type KnowledgeRetriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}
