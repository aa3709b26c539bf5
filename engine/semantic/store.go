// Package semantic is the sole owner of all Qdrant operations: collection
// lifecycle, upsert, count and similarity search over review documents.
package semantic

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rasoi-labs/rasoi/engine/domain"
)

// VectorStore wraps a Qdrant collection of embedded review documents.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New creates a VectorStore connected to Qdrant at the given gRPC address.
func New(addr string, collection string) (*VectorStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (v *VectorStore) Close() error {
	return v.conn.Close()
}

// Collection returns the collection name this store is bound to.
func (v *VectorStore) Collection() string {
	return v.collection
}

// Exists reports whether the collection is present.
func (v *VectorStore) Exists(ctx context.Context) (bool, error) {
	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return false, fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == v.collection {
			return true, nil
		}
	}
	return false, nil
}

// Recreate drops the collection if present and creates it fresh with the
// given dimensionality. Index builds always start from a clean collection;
// rebuilds replace it wholesale.
func (v *VectorStore) Recreate(ctx context.Context, dims int) error {
	exists, err := v.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		if err := v.Drop(ctx); err != nil {
			return err
		}
	}
	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: v.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", v.collection, err)
	}
	return nil
}

// Drop deletes the collection.
func (v *VectorStore) Drop(ctx context.Context) error {
	_, err := v.collections.Delete(ctx, &pb.DeleteCollection{
		CollectionName: v.collection,
	})
	if err != nil {
		return fmt.Errorf("semantic: delete collection %s: %w", v.collection, err)
	}
	return nil
}

// Count returns the number of stored documents.
func (v *VectorStore) Count(ctx context.Context) (int, error) {
	resp, err := v.points.Count(ctx, &pb.CountPoints{CollectionName: v.collection})
	if err != nil {
		return 0, fmt.Errorf("semantic: count: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Upsert stores embedded documents. Called only by the index builder.
func (v *VectorStore) Upsert(ctx context.Context, records []VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: r.ID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Embedding},
				},
			},
			Payload: documentPayload(r.Document),
		}
	}

	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(records), err)
	}
	return nil
}

// Search performs k-NN similarity search with an optional metadata filter.
// withVectors asks Qdrant to return the stored embeddings alongside each
// hit.
func (v *VectorStore) Search(ctx context.Context, embedding []float32, topK int, filter *Filter, withVectors bool) ([]SearchResult, error) {
	req := &pb.SearchPoints{
		CollectionName: v.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	}
	if withVectors {
		req.WithVectors = &pb.WithVectorsSelector{
			SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true},
		}
	}
	if !filter.empty() {
		var must []*pb.Condition
		if filter.MinRating != nil {
			must = append(must, &pb.Condition{
				ConditionOneOf: &pb.Condition_Field{
					Field: &pb.FieldCondition{
						Key:   "rating",
						Range: &pb.Range{Gte: filter.MinRating},
					},
				},
			})
		}
		if filter.PriceRange != "" {
			must = append(must, keywordMatch("price_range", filter.PriceRange))
		}
		req.Filter = &pb.Filter{Must: must}
	}

	resp, err := v.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("semantic: search: %w", err)
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		results[i] = SearchResult{
			ID:       r.GetId().GetUuid(),
			Score:    r.GetScore(),
			Document: documentFromPayload(r.GetPayload()),
			Vector:   r.GetVectors().GetVector().GetData(),
		}
	}
	return results, nil
}

func keywordMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

func documentPayload(doc domain.Document) map[string]*pb.Value {
	m := doc.Metadata
	payload := map[string]*pb.Value{
		"content":           str(doc.PageContent),
		"restaurant":        str(m.Restaurant),
		"rating":            integer(int64(m.Rating)),
		"author":            str(m.Author),
		"date":              str(m.Date),
		"source":            str(m.Source),
		"cuisine":           str(m.Cuisine),
		"price_range":       str(m.PriceRange),
		"restaurant_rating": double(m.RestaurantRating),
	}
	if m.ChunkIndex != nil {
		payload["chunk_index"] = integer(int64(*m.ChunkIndex))
	}
	if m.TotalChunks != nil {
		payload["total_chunks"] = integer(int64(*m.TotalChunks))
	}
	return payload
}

func documentFromPayload(payload map[string]*pb.Value) domain.Document {
	doc := domain.Document{
		PageContent: payload["content"].GetStringValue(),
		Metadata: domain.Metadata{
			Restaurant:       payload["restaurant"].GetStringValue(),
			Rating:           int(payload["rating"].GetIntegerValue()),
			Author:           payload["author"].GetStringValue(),
			Date:             payload["date"].GetStringValue(),
			Source:           payload["source"].GetStringValue(),
			Cuisine:          payload["cuisine"].GetStringValue(),
			PriceRange:       payload["price_range"].GetStringValue(),
			RestaurantRating: payload["restaurant_rating"].GetDoubleValue(),
		},
	}
	if v, ok := payload["chunk_index"]; ok {
		idx := int(v.GetIntegerValue())
		doc.Metadata.ChunkIndex = &idx
	}
	if v, ok := payload["total_chunks"]; ok {
		n := int(v.GetIntegerValue())
		doc.Metadata.TotalChunks = &n
	}
	return doc
}

func str(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func integer(n int64) *pb.Value {
	return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: n}}
}

func double(f float64) *pb.Value {
	return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: f}}
}
