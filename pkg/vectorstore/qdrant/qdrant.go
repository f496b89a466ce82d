// Package qdrant provides a vectorstore.Backend on a Qdrant server, talking
// to it over gRPC. Each vectorstore collection maps to one Qdrant
// collection using cosine distance.
package qdrant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/rhuss/docsim/pkg/vectorstore"
)

// Payload keys.
const (
	payloadDocID   = "doc_id"
	payloadContent = "content"
	payloadOrdinal = "ordinal"
)

// Config holds Qdrant connection settings.
type Config struct {
	Host string
	// Port is the gRPC port (default: 6334).
	Port int
}

func (c *Config) defaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
}

// Store is a Qdrant-backed vector Backend.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	health      pb.QdrantClient
}

// Ensure Store implements vectorstore.Backend at compile time.
var _ vectorstore.Backend = (*Store)(nil)

// New creates a client for the configured Qdrant server. The connection is
// established lazily; use HealthCheck to verify reachability.
func New(cfg Config) (*Store, error) {
	cfg.defaults()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}

	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		health:      pb.NewQdrantClient(conn),
	}, nil
}

// Name returns "qdrant".
func (s *Store) Name() string { return "qdrant" }

// CreateCollection creates a cosine-distance collection. Qdrant needs a
// fixed vector size, so dimensions must be positive.
func (s *Store) CreateCollection(ctx context.Context, name string, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("qdrant collection %q needs positive dimensions, got %d", name, dimensions)
	}

	_, err := s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: name,
		VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{
			Params: &pb.VectorParams{
				Size:     uint64(dimensions),
				Distance: pb.Distance_Cosine,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection: %w", err)
	}
	return nil
}

// GetCollection returns collection metadata or vectorstore.ErrNotFound.
func (s *Store) GetCollection(ctx context.Context, name string) (*vectorstore.CollectionInfo, error) {
	resp, err := s.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: name})
	if err != nil {
		return nil, mapError("get collection", err)
	}

	result := resp.GetResult()
	return &vectorstore.CollectionInfo{
		Name:       name,
		Dimensions: int(result.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()),
		Count:      int(result.GetPointsCount()),
	}, nil
}

// DeleteCollection removes a collection.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	_, err := s.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: name})
	if err := mapError("delete collection", err); err != nil && !errors.Is(err, vectorstore.ErrNotFound) {
		return err
	}
	return nil
}

// DeleteAll removes every point with an empty filter, which matches all.
func (s *Store) DeleteAll(ctx context.Context, name string) error {
	wait := true
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: name,
		Wait:           &wait,
		Points: &pb.PointsSelector{PointsSelectorOneOf: &pb.PointsSelector_Filter{
			Filter: &pb.Filter{},
		}},
	})
	return mapError("delete points", err)
}

// Upsert stores points and waits until they are searchable.
func (s *Store) Upsert(ctx context.Context, name string, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*pb.PointStruct, len(points))
	for i, p := range points {
		structs[i] = toPointStruct(p)
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: name,
		Wait:           &wait,
		Points:         structs,
	})
	return mapError("upsert", err)
}

// Search returns the k nearest points. Qdrant does not order equal scores
// by insertion, so twice as many candidates are fetched and re-ranked by
// ordinal before truncating.
func (s *Store) Search(ctx context.Context, name string, vector []float32, k int) ([]vectorstore.SearchMatch, error) {
	if k <= 0 {
		return nil, nil
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: name,
		Vector:         vector,
		Limit:          uint64(2 * k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, mapError("search", err)
	}

	matches := make([]vectorstore.SearchMatch, len(resp.GetResult()))
	for i, pt := range resp.GetResult() {
		matches[i] = fromScoredPoint(pt)
	}
	return vectorstore.TopK(matches, k), nil
}

// Count returns the exact number of points in a collection.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: name,
		Exact:          &exact,
	})
	if err != nil {
		return 0, mapError("count", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// HealthCheck calls Qdrant's health endpoint.
func (s *Store) HealthCheck(ctx context.Context) error {
	if _, err := s.health.HealthCheck(ctx, &pb.HealthCheckRequest{}); err != nil {
		return fmt.Errorf("qdrant health check: %w", err)
	}
	return nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// pointID derives a stable UUID from a document id, since Qdrant only
// accepts unsigned integers and UUIDs as point ids.
func pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func toPointStruct(p vectorstore.Point) *pb.PointStruct {
	return &pb.PointStruct{
		Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: pointID(p.ID)}},
		Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: p.Vector}}},
		Payload: map[string]*pb.Value{
			payloadDocID:   {Kind: &pb.Value_StringValue{StringValue: p.ID}},
			payloadContent: {Kind: &pb.Value_StringValue{StringValue: p.Content}},
			payloadOrdinal: {Kind: &pb.Value_IntegerValue{IntegerValue: p.Ordinal}},
		},
	}
}

func fromScoredPoint(pt *pb.ScoredPoint) vectorstore.SearchMatch {
	payload := pt.GetPayload()
	return vectorstore.SearchMatch{
		ID:      payload[payloadDocID].GetStringValue(),
		Content: payload[payloadContent].GetStringValue(),
		Ordinal: payload[payloadOrdinal].GetIntegerValue(),
		Score:   pt.GetScore(),
	}
}

// mapError translates gRPC NotFound into vectorstore.ErrNotFound and wraps
// everything else.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("qdrant %s: %w", op, vectorstore.ErrNotFound)
	}
	return fmt.Errorf("qdrant %s: %w", op, err)
}
