package repository

import (
	"context"

	"github.com/bandready/ielts-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestRepository handles practice-test data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// List retrieves summaries of all published tests.
func (r *TestRepository) List(ctx context.Context) ([]model.TestSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.title, t.module, t.status, t.created_at,
		        (SELECT COUNT(*) FROM questions q
		         JOIN question_groups g ON q.group_id = g.id
		         JOIN parts p ON g.part_id = p.id
		         WHERE p.test_id = t.id) AS question_count
		 FROM tests t
		 WHERE t.status = 'PUBLISHED'
		 ORDER BY t.created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.TestSummary
	for rows.Next() {
		var t model.TestSummary
		if err := rows.Scan(&t.ID, &t.Title, &t.Module, &t.Status, &t.CreatedAt, &t.QuestionCount); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// ListPublishedIDs returns the IDs of all published tests, used for cache
// prewarming at startup.
func (r *TestRepository) ListPublishedIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM tests WHERE status = 'PUBLISHED'`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetByID retrieves a test with its full Part → QuestionGroup → Question /
// Option tree, ordered by position throughout.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	var t model.Test
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, module, status, created_at, updated_at
		 FROM tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.Module, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	parts, err := r.loadParts(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Parts = parts
	return &t, nil
}

func (r *TestRepository) loadParts(ctx context.Context, testID uuid.UUID) ([]model.Part, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, part_number, title, COALESCE(passage, ''), COALESCE(audio_url, '')
		 FROM parts WHERE test_id = $1
		 ORDER BY part_number`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []model.Part
	var partIDs []uuid.UUID
	for rows.Next() {
		var p model.Part
		if err := rows.Scan(&p.ID, &p.TestID, &p.PartNumber, &p.Title, &p.Passage, &p.AudioURL); err != nil {
			return nil, err
		}
		parts = append(parts, p)
		partIDs = append(partIDs, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return parts, nil
	}

	groupsByPart, err := r.loadGroups(ctx, partIDs)
	if err != nil {
		return nil, err
	}
	for i := range parts {
		parts[i].Groups = groupsByPart[parts[i].ID]
	}
	return parts, nil
}

func (r *TestRepository) loadGroups(ctx context.Context, partIDs []uuid.UUID) (map[uuid.UUID][]model.QuestionGroup, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, part_id, type, COALESCE(instruction, '')
		 FROM question_groups WHERE part_id = ANY($1)
		 ORDER BY position`, partIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byPart := make(map[uuid.UUID][]model.QuestionGroup)
	var groupIDs []uuid.UUID
	for rows.Next() {
		var g model.QuestionGroup
		if err := rows.Scan(&g.ID, &g.PartID, &g.Type, &g.Instruction); err != nil {
			return nil, err
		}
		byPart[g.PartID] = append(byPart[g.PartID], g)
		groupIDs = append(groupIDs, g.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(groupIDs) == 0 {
		return byPart, nil
	}

	questionsByGroup, err := r.loadQuestions(ctx, groupIDs)
	if err != nil {
		return nil, err
	}
	optionsByGroup, optionsByQuestion, err := r.loadOptions(ctx, groupIDs)
	if err != nil {
		return nil, err
	}

	for partID, groups := range byPart {
		for i := range groups {
			g := &groups[i]
			g.Questions = questionsByGroup[g.ID]
			g.Options = optionsByGroup[g.ID]
			for qi := range g.Questions {
				g.Questions[qi].Options = optionsByQuestion[g.Questions[qi].ID]
			}
		}
		byPart[partID] = groups
	}
	return byPart, nil
}

func (r *TestRepository) loadQuestions(ctx context.Context, groupIDs []uuid.UUID) (map[uuid.UUID][]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, group_id, question_number, question_text, COALESCE(correct_answer, '')
		 FROM questions WHERE group_id = ANY($1)
		 ORDER BY question_number`, groupIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byGroup := make(map[uuid.UUID][]model.Question)
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.GroupID, &q.QuestionNumber, &q.QuestionText, &q.CorrectAnswer); err != nil {
			return nil, err
		}
		byGroup[q.GroupID] = append(byGroup[q.GroupID], q)
	}
	return byGroup, rows.Err()
}

func (r *TestRepository) loadOptions(ctx context.Context, groupIDs []uuid.UUID) (map[uuid.UUID][]model.Option, map[uuid.UUID][]model.Option, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, group_id, question_id, question_number,
		        COALESCE(option_key, ''), COALESCE(letter, ''), option_text, is_correct
		 FROM options WHERE group_id = ANY($1)
		 ORDER BY position`, groupIDs,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	byGroup := make(map[uuid.UUID][]model.Option)
	byQuestion := make(map[uuid.UUID][]model.Option)
	for rows.Next() {
		var o model.Option
		var groupID uuid.UUID
		if err := rows.Scan(&o.ID, &groupID, &o.QuestionID, &o.QuestionNumber, &o.OptionKey, &o.Letter, &o.OptionText, &o.IsCorrect); err != nil {
			return nil, nil, err
		}
		byGroup[groupID] = append(byGroup[groupID], o)
		if o.QuestionID != nil {
			byQuestion[*o.QuestionID] = append(byQuestion[*o.QuestionID], o)
		}
	}
	return byGroup, byQuestion, rows.Err()
}
