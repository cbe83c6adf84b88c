package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentmatch/resume-engine/internal/cache"
	"talentmatch/resume-engine/internal/config"
	"talentmatch/resume-engine/internal/matching"
	"talentmatch/resume-engine/internal/models"
	"talentmatch/resume-engine/internal/repositories"
)

// MatcherService computes and persists match results. Scores are
// deterministic per (profile version, job version), so a stored result is
// returned as-is and never recomputed.
type MatcherService interface {
	ComputeMatch(ctx context.Context, profileVersionID, jobID uuid.UUID, override bool) (*models.MatchResult, error)
	BulkMatch(ctx context.Context, jobID uuid.UUID, profileVersionIDs []uuid.UUID, limit int, override bool) ([]*models.MatchResult, []BulkMatchFailure, error)
	Rankings(ctx context.Context, jobID uuid.UUID) ([]models.RankingEntry, error)
}

// BulkMatchFailure reports one profile that could not be matched in a bulk
// run. Per-profile failures never abort the rest of the batch.
type BulkMatchFailure struct {
	ProfileVersionID uuid.UUID `json:"profile_version_id"`
	Error            string    `json:"error"`
}

type matcherService struct {
	profileRepo    repositories.ProfileRepository
	jobRepo        repositories.JobRepository
	matchRepo      repositories.MatchRepository
	engine         *matching.Engine
	explainer      *matching.ExplanationGenerator
	gemini         GeminiService
	vectorIndex    VectorIndexService
	resultCache    *cache.ResultCache
	explanationTTL time.Duration
	logger         *zap.Logger
}

func NewMatcherService(
	profileRepo repositories.ProfileRepository,
	jobRepo repositories.JobRepository,
	matchRepo repositories.MatchRepository,
	engine *matching.Engine,
	explainer *matching.ExplanationGenerator,
	gemini GeminiService,
	vectorIndex VectorIndexService,
	resultCache *cache.ResultCache,
	cfg config.MatchingConfig,
	logger *zap.Logger,
) MatcherService {
	return &matcherService{
		profileRepo:    profileRepo,
		jobRepo:        jobRepo,
		matchRepo:      matchRepo,
		engine:         engine,
		explainer:      explainer,
		gemini:         gemini,
		vectorIndex:    vectorIndex,
		resultCache:    resultCache,
		explanationTTL: cfg.ExplanationTTL,
		logger:         logger,
	}
}

func (s *matcherService) ComputeMatch(ctx context.Context, profileVersionID, jobID uuid.UUID, override bool) (*models.MatchResult, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, err
	}

	existing, err := s.matchRepo.FindByProfileAndJob(profileVersionID, jobID, job.Version)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	version, err := s.profileRepo.FindByID(profileVersionID)
	if err != nil {
		return nil, err
	}
	profile, err := version.Profile()
	if err != nil {
		return nil, err
	}

	scores, err := s.engine.Match(ctx, profile, version.QualityScore, job, override)
	if err != nil {
		return nil, err
	}

	explanation := s.explain(ctx, scores, job)

	result := &models.MatchResult{
		ProfileVersionID: version.ID,
		JobID:            job.ID,
		JobVersion:       job.Version,
		SkillScore:       scores.Skill,
		ExperienceScore:  scores.Experience,
		ProjectScore:     scores.Project,
		DomainScore:      scores.Domain,
		OverallScore:     scores.Overall,
		ConfidenceLevel:  scores.Confidence,
	}
	if err := result.SetExplanation(&explanation); err != nil {
		return nil, err
	}

	if err := s.matchRepo.Create(result); err != nil {
		// A concurrent request may have stored the same pair first; the
		// stored row is identical by determinism, so prefer it.
		if stored, findErr := s.matchRepo.FindByProfileAndJob(profileVersionID, jobID, job.Version); findErr == nil && stored != nil {
			return stored, nil
		}
		return nil, err
	}
	return result, nil
}

// explain caches the narrative per (facts, job version): regenerating prose
// for identical facts is pure cost.
func (s *matcherService) explain(ctx context.Context, scores *matching.Scores, job *models.JobRequirement) models.AiExplanation {
	factsKey, err := json.Marshal(scores.Facts)
	if err != nil {
		return s.explainer.Explain(ctx, scores, job)
	}

	key := cache.KeyText(cache.NamespaceExplanation,
		fmt.Sprintf("%s:%d:%.1f:%s", job.ID, job.Version, scores.Overall, factsKey))
	data, err := s.resultCache.GetOrCompute(ctx, key, s.explanationTTL, func(ctx context.Context) ([]byte, error) {
		explanation := s.explainer.Explain(ctx, scores, job)
		return json.Marshal(explanation)
	})
	if err != nil {
		return s.explainer.Explain(ctx, scores, job)
	}

	var explanation models.AiExplanation
	if err := json.Unmarshal(data, &explanation); err != nil {
		return s.explainer.Explain(ctx, scores, job)
	}
	return explanation
}

// BulkMatch scores many profiles against one job. With no explicit profile
// list, candidates come from the vector index: profiles whose narratives sit
// closest to the job description.
func (s *matcherService) BulkMatch(ctx context.Context, jobID uuid.UUID, profileVersionIDs []uuid.UUID, limit int, override bool) ([]*models.MatchResult, []BulkMatchFailure, error) {
	if len(profileVersionIDs) == 0 {
		discovered, err := s.discoverCandidates(ctx, jobID, limit)
		if err != nil {
			return nil, nil, err
		}
		profileVersionIDs = discovered
	}

	var (
		results  []*models.MatchResult
		failures []BulkMatchFailure
	)
	for _, id := range profileVersionIDs {
		result, err := s.ComputeMatch(ctx, id, jobID, override)
		if err != nil {
			failures = append(failures, BulkMatchFailure{ProfileVersionID: id, Error: err.Error()})
			continue
		}
		results = append(results, result)
	}
	return results, failures, nil
}

func (s *matcherService) discoverCandidates(ctx context.Context, jobID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if s.vectorIndex == nil {
		return nil, fmt.Errorf("no profile list given and vector index is not configured")
	}
	if limit <= 0 {
		limit = 20
	}

	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(job.Title + ". " + job.Description)
	embedding, err := s.gemini.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed job for candidate discovery: %w", err)
	}

	hits, err := s.vectorIndex.SearchProfiles(ctx, embedding, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.ProfileVersionID)
	}
	return ids, nil
}

func (s *matcherService) Rankings(ctx context.Context, jobID uuid.UUID) ([]models.RankingEntry, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, err
	}

	results, err := s.matchRepo.ListByJob(jobID, job.Version)
	if err != nil {
		return nil, err
	}

	// Only the latest profile version per document competes; stale versions
	// stay stored but drop out of the ranking.
	results, err = s.latestOnly(results)
	if err != nil {
		return nil, err
	}

	return matching.Rank(results), nil
}

func (s *matcherService) latestOnly(results []*models.MatchResult) ([]*models.MatchResult, error) {
	if len(results) == 0 {
		return results, nil
	}

	ids := make([]uuid.UUID, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ProfileVersionID)
	}
	versions, err := s.profileRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.ProfileVersion, len(versions))
	newest := make(map[uuid.UUID]int)
	for _, v := range versions {
		byID[v.ID] = v
		if v.Version > newest[v.DocumentID] {
			newest[v.DocumentID] = v.Version
		}
	}

	var kept []*models.MatchResult
	for _, r := range results {
		v, ok := byID[r.ProfileVersionID]
		if !ok {
			continue
		}
		if v.Version == newest[v.DocumentID] {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ProfileVersionID.String() < kept[j].ProfileVersionID.String()
	})
	return kept, nil
}
