package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	workModel "portalku_backend/internals/features/academics/workitems/model"
)

func TestKindIndexes(t *testing.T) {
	stmts := kindIndexes(workModel.MustSpec(workModel.KindHomework))
	joined := strings.Join(stmts, "\n")
	assert.Contains(t, joined, "CREATE UNIQUE INDEX IF NOT EXISTS uq_homework_submissions_attempt ON homework_submissions (work_item_id, student_id, attempt)")
	assert.Contains(t, joined, "CHECK (attempt >= 1)")
	assert.Contains(t, joined, "REFERENCES homeworks (id)")
}
