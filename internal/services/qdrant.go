package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"talentmatch/resume-engine/internal/config"
)

// VectorIndexService maintains the profile-narrative vector index used for
// bulk-match candidate discovery. One point per profile version; reprocessing
// a document adds a new point for the new version.
type VectorIndexService interface {
	InitCollection() error
	UpsertProfile(ctx context.Context, profileVersionID, documentID uuid.UUID, narrative string, embedding []float32) error
	SearchProfiles(ctx context.Context, queryEmbedding []float32, limit int) ([]ProfileHit, error)
	DeleteProfile(ctx context.Context, profileVersionID uuid.UUID) error
}

type ProfileHit struct {
	ProfileVersionID uuid.UUID
	DocumentID       uuid.UUID
	Score            float32
}

type vectorIndexService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewVectorIndexService(cfg config.QdrantConfig, logger *zap.Logger) (VectorIndexService, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the REST one.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &vectorIndexService{
		client:         client,
		collectionName: cfg.Collection,
		vectorSize:     768, // text-embedding-004 dimension
		logger:         logger,
	}, nil
}

func (s *vectorIndexService) InitCollection() error {
	ctx := context.Background()

	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	s.logger.Info("qdrant collection created", zap.String("collection", s.collectionName))
	return nil
}

func (s *vectorIndexService) UpsertProfile(ctx context.Context, profileVersionID, documentID uuid.UUID, narrative string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(profileVersionID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"profile_version_id": profileVersionID.String(),
			"document_id":        documentID.String(),
			"narrative":          narrative,
		}),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert profile point: %w", err)
	}
	return nil
}

func (s *vectorIndexService) SearchProfiles(ctx context.Context, queryEmbedding []float32, limit int) ([]ProfileHit, error) {
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}

	var hits []ProfileHit
	for _, point := range points {
		hit := ProfileHit{Score: point.Score}

		if v, ok := point.Payload["profile_version_id"]; ok {
			if sv, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				if id, err := uuid.Parse(sv.StringValue); err == nil {
					hit.ProfileVersionID = id
				}
			}
		}
		if v, ok := point.Payload["document_id"]; ok {
			if sv, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				if id, err := uuid.Parse(sv.StringValue); err == nil {
					hit.DocumentID = id
				}
			}
		}

		if hit.ProfileVersionID == uuid.Nil {
			s.logger.Warn("skipping qdrant point without profile_version_id payload")
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (s *vectorIndexService) DeleteProfile(ctx context.Context, profileVersionID uuid.UUID) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("profile_version_id", profileVersionID.String()),
		},
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete profile point: %w", err)
	}
	return nil
}
