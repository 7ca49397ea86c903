package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	agtypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"chat-orchestrator/internal/domain"
)

// retrievalTopK is the fixed number of matches requested per query.
const retrievalTopK = 3

// agentRuntimeAPI is the slice of the bedrock-agent-runtime client this
// gateway uses.
type agentRuntimeAPI interface {
	Retrieve(ctx context.Context, params *bedrockagentruntime.RetrieveInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
}

// KnowledgeBaseGateway queries one Bedrock knowledge base and returns hits in
// provider rank order.
type KnowledgeBaseGateway struct {
	api             agentRuntimeAPI
	knowledgeBaseID string
}

// NewKnowledgeBaseGateway constructs a gateway bound to a single knowledge
// base identifier.
func NewKnowledgeBaseGateway(api agentRuntimeAPI, knowledgeBaseID string) *KnowledgeBaseGateway {
	return &KnowledgeBaseGateway{
		api:             api,
		knowledgeBaseID: knowledgeBaseID,
	}
}

// Retrieve issues one vector search for the query. Hits missing a text body
// are dropped; order is preserved as returned.
func (g *KnowledgeBaseGateway) Retrieve(ctx context.Context, query string) ([]domain.Document, error) {
	if g == nil || g.api == nil {
		return nil, domain.ErrNotConfigured
	}

	out, err := g.api.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(g.knowledgeBaseID),
		RetrievalQuery: &agtypes.KnowledgeBaseQuery{
			Text: aws.String(query),
		},
		RetrievalConfiguration: &agtypes.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &agtypes.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(retrievalTopK),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge base retrieve failed: %w", err)
	}

	docs := make([]domain.Document, 0, len(out.RetrievalResults))
	for _, result := range out.RetrievalResults {
		if result.Content == nil || result.Content.Text == nil {
			continue
		}
		docs = append(docs, domain.Document{Text: *result.Content.Text})
	}
	return docs, nil
}

var _ domain.KnowledgeRetriever = (*KnowledgeBaseGateway)(nil)
