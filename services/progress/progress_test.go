package progress

import (
	"context"
	"coursetrack/database/dbtest"
	"coursetrack/models"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func seedBatch(t *testing.T, db *gorm.DB, days, tasks int) (models.Batch, []models.Task) {
	t.Helper()
	batch := models.Batch{Title: "Go Bootcamp", CourseName: "Go", DurationDays: days, IsActive: true}
	require.NoError(t, db.Create(&batch).Error)

	out := make([]models.Task, 0, tasks)
	for d := 1; d <= tasks; d++ {
		task := models.Task{
			Title:       fmt.Sprintf("Day %d", d),
			DayNumber:   d,
			BatchID:     batch.ID,
			ContentType: models.ContentQuiz,
			IsPublished: true,
		}
		require.NoError(t, db.Create(&task).Error)
		out = append(out, task)
	}
	return batch, out
}

func TestPercent(t *testing.T) {
	cases := []struct {
		completed, total int64
		want             int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{1, 200, 1},
		{1, 201, 0},
		{4, 4, 100},
		{5, 4, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Percent(tc.completed, tc.total), "%d/%d", tc.completed, tc.total)
	}
}

func TestEnrollTwiceReturnsExisting(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	batch, _ := seedBatch(t, db, 10, 0)

	first, err := svc.Enroll(ctx, 7, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Progress)
	assert.Equal(t, models.EnrollmentActive, first.Status)
	assert.Empty(t, first.CompletedTasks)

	again, err := svc.Enroll(ctx, 7, batch.ID)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.NotNil(t, again)
	assert.Equal(t, first.ID, again.ID)

	var count int64
	db.Model(&models.Enrollment{}).Where("user_id = ? AND batch_id = ?", 7, batch.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestEnrollLosingRaceReturnsWinner(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	batch, _ := seedBatch(t, db, 10, 0)

	// another request enrolls the same user between the lookup and the insert
	var rival models.Enrollment
	fired := false
	require.NoError(t, db.Callback().Create().Before("gorm:begin_transaction").Register("rival_enroll", func(tx *gorm.DB) {
		if fired || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "enrollments" {
			return
		}
		fired = true
		rival = models.Enrollment{UserID: 7, BatchID: batch.ID, Status: models.EnrollmentActive, EnrolledDate: time.Now(), CompletedTasks: []uint{}}
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Create(&rival).Error)
	}))

	got, err := svc.Enroll(ctx, 7, batch.ID)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.NotNil(t, got)
	assert.Equal(t, rival.ID, got.ID)
}

func TestEnrollRejectsMissingInactiveAndFullBatches(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, 1, 999)
	assert.ErrorIs(t, err, ErrBatchNotFound)

	inactive := models.Batch{Title: "Closed", CourseName: "Go", DurationDays: 5}
	require.NoError(t, db.Create(&inactive).Error)
	_, err = svc.Enroll(ctx, 1, inactive.ID)
	assert.ErrorIs(t, err, ErrBatchInactive)

	small := models.Batch{Title: "Small", CourseName: "Go", DurationDays: 5, Capacity: 1, IsActive: true}
	require.NoError(t, db.Create(&small).Error)
	_, err = svc.Enroll(ctx, 1, small.ID)
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, 2, small.ID)
	assert.ErrorIs(t, err, ErrBatchFull)

	// a withdrawn seat is free again
	_, err = svc.Withdraw(ctx, 1, small.ID)
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, 2, small.ID)
	assert.NoError(t, err)
}

func TestCompleteTasksReachesCompleted(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	batch, tasks := seedBatch(t, db, 10, 4)

	e, err := svc.Enroll(ctx, 3, batch.ID)
	require.NoError(t, err)

	for _, task := range tasks[:2] {
		_, err := svc.CompleteTask(ctx, 3, e.ID, task.ID)
		require.NoError(t, err)
	}
	res, err := svc.CompleteTask(ctx, 3, e.ID, tasks[1].ID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
	assert.Equal(t, 50, res.Enrollment.Progress)
	assert.Equal(t, models.EnrollmentActive, res.Enrollment.Status)
	assert.EqualValues(t, 4, res.TotalTasks)

	for _, task := range tasks[2:] {
		res, err = svc.CompleteTask(ctx, 3, e.ID, task.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 100, res.Enrollment.Progress)
	assert.Equal(t, models.EnrollmentCompleted, res.Enrollment.Status)
	assert.NotNil(t, res.Enrollment.CompletedAt)

	var stored models.Enrollment
	require.NoError(t, db.First(&stored, e.ID).Error)
	assert.Len(t, stored.CompletedTasks, 4)
	assert.Equal(t, 100, stored.Progress)
}

func TestCompleteTaskIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	batch, tasks := seedBatch(t, db, 5, 3)
	e, err := svc.Enroll(ctx, 1, batch.ID)
	require.NoError(t, err)

	_, err = svc.CompleteTask(ctx, 1, e.ID, tasks[0].ID)
	require.NoError(t, err)
	var once models.Enrollment
	require.NoError(t, db.First(&once, e.ID).Error)

	res, err := svc.CompleteTask(ctx, 1, e.ID, tasks[0].ID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)

	var twice models.Enrollment
	require.NoError(t, db.First(&twice, e.ID).Error)
	assert.Equal(t, once.Progress, twice.Progress)
	assert.Equal(t, []uint(once.CompletedTasks), []uint(twice.CompletedTasks))
	assert.Equal(t, 33, twice.Progress)
}

func TestCompleteTaskRejectsForeignEnrollmentAndTask(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	batch, tasks := seedBatch(t, db, 5, 1)
	e, err := svc.Enroll(ctx, 1, batch.ID)
	require.NoError(t, err)

	_, err = svc.CompleteTask(ctx, 2, e.ID, tasks[0].ID)
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)

	other := models.Batch{Title: "Other", CourseName: "Rust", DurationDays: 3, IsActive: true}
	require.NoError(t, db.Create(&other).Error)
	foreign := models.Task{Title: "x", DayNumber: 1, BatchID: other.ID, ContentType: models.ContentQuiz}
	require.NoError(t, db.Create(&foreign).Error)

	_, err = svc.CompleteTask(ctx, 1, e.ID, foreign.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = svc.CompleteTask(ctx, 1, e.ID, 12345)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUncompleteNeverCompletedIsNoop(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	batch, tasks := seedBatch(t, db, 5, 2)
	e, err := svc.Enroll(ctx, 1, batch.ID)
	require.NoError(t, err)
	_, err = svc.CompleteTask(ctx, 1, e.ID, tasks[0].ID)
	require.NoError(t, err)

	res, err := svc.UncompleteTask(ctx, 1, batch.ID, tasks[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Enrollment.Progress)
	assert.Equal(t, []uint{tasks[0].ID}, []uint(res.Enrollment.CompletedTasks))
}

func TestUncompleteRevertsCompletedStatus(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	batch, tasks := seedBatch(t, db, 5, 2)
	e, err := svc.Enroll(ctx, 1, batch.ID)
	require.NoError(t, err)
	for _, task := range tasks {
		_, err = svc.CompleteTask(ctx, 1, e.ID, task.ID)
		require.NoError(t, err)
	}

	res, err := svc.UncompleteTask(ctx, 1, batch.ID, tasks[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Enrollment.Progress)
	assert.Equal(t, models.EnrollmentActive, res.Enrollment.Status)
	assert.Nil(t, res.Enrollment.CompletedAt)
}

func TestUncompleteRequiresEnrollment(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	batch, tasks := seedBatch(t, db, 5, 1)

	_, err := svc.UncompleteTask(context.Background(), 9, batch.ID, tasks[0].ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestProgressTracksLiveTaskCount(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	batch, _ := seedBatch(t, db, 5, 0)
	e, err := svc.Enroll(ctx, 1, batch.ID)
	require.NoError(t, err)

	snap, err := svc.GetProgress(ctx, 1, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Progress)
	assert.EqualValues(t, 0, snap.TotalTasks)
	assert.Nil(t, snap.LastCompletedTask)
	assert.Equal(t, e.ID, snap.EnrollmentID)
}

func TestGetProgressLastCompletedTieBreak(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	batch, tasks := seedBatch(t, db, 5, 3)
	e, err := svc.Enroll(ctx, 1, batch.ID)
	require.NoError(t, err)

	// complete out of order; day 3 must win
	for _, i := range []int{2, 0, 1} {
		_, err = svc.CompleteTask(ctx, 1, e.ID, tasks[i].ID)
		require.NoError(t, err)
	}
	snap, err := svc.GetProgress(ctx, 1, batch.ID)
	require.NoError(t, err)
	require.NotNil(t, snap.LastCompletedTask)
	assert.Equal(t, tasks[2].ID, snap.LastCompletedTask.ID)
	assert.Equal(t, 100, snap.Progress)
	assert.EqualValues(t, 3, snap.TotalTasks)

	_, err = svc.GetProgress(ctx, 2, batch.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestCheckEnrollmentDoesNotMutate(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	batch, _ := seedBatch(t, db, 5, 0)

	e, found, err := svc.CheckEnrollment(ctx, 1, batch.ID)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, e)

	_, err = svc.Enroll(ctx, 1, batch.ID)
	require.NoError(t, err)
	e, found, err = svc.CheckEnrollment(ctx, 1, batch.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, e.EnrolledDate.Equal(svc.now()))

	var count int64
	db.Model(&models.Enrollment{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestStaleCompletedTaskIsDroppedAndCanBeUncompleted(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	batch, tasks := seedBatch(t, db, 4, 4)

	e, err := svc.Enroll(ctx, 1, batch.ID)
	require.NoError(t, err)
	for _, task := range tasks[:2] {
		_, err := svc.CompleteTask(ctx, 1, e.ID, task.ID)
		require.NoError(t, err)
	}

	// task removed behind the engine's back
	require.NoError(t, db.Unscoped().Delete(&models.Task{}, tasks[0].ID).Error)

	res, err := svc.UncompleteTask(ctx, 1, batch.ID, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{tasks[1].ID}, []uint(res.Enrollment.CompletedTasks))
	assert.Equal(t, 33, res.Enrollment.Progress)

	_, err = svc.UncompleteTask(ctx, 1, batch.ID, tasks[0].ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestCompletionIgnoresDeletedTasks(t *testing.T) {
	db := dbtest.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	batch, tasks := seedBatch(t, db, 4, 4)

	e, err := svc.Enroll(ctx, 1, batch.ID)
	require.NoError(t, err)
	for _, task := range tasks[:2] {
		_, err := svc.CompleteTask(ctx, 1, e.ID, task.ID)
		require.NoError(t, err)
	}
	require.NoError(t, db.Unscoped().Delete(&models.Task{}, tasks[0].ID).Error)

	res, err := svc.CompleteTask(ctx, 1, e.ID, tasks[2].ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{tasks[1].ID, tasks[2].ID}, []uint(res.Enrollment.CompletedTasks))
	assert.EqualValues(t, 3, res.TotalTasks)
	assert.Equal(t, 67, res.Enrollment.Progress)
	assert.Equal(t, models.EnrollmentActive, res.Enrollment.Status)
}

func TestConcurrentCompletionsAreAllCounted(t *testing.T) {
	db := dbtest.NewFile(t)
	svc := New(db, nil)
	ctx := context.Background()
	batch, tasks := seedBatch(t, db, 8, 8)

	e, err := svc.Enroll(ctx, 1, batch.ID)
	require.NoError(t, err)

	var g errgroup.Group
	for _, task := range tasks {
		taskID := task.ID
		g.Go(func() error {
			_, err := svc.CompleteTask(ctx, 1, e.ID, taskID)
			return err
		})
	}
	require.NoError(t, g.Wait())

	snap, err := svc.GetProgress(ctx, 1, batch.ID)
	require.NoError(t, err)
	assert.Len(t, snap.CompletedTasks, len(tasks))
	assert.ElementsMatch(t, taskIDs(tasks), snap.CompletedTasks)
	assert.Equal(t, 100, snap.Progress)
	assert.Equal(t, models.EnrollmentCompleted, snap.Status)
}

func taskIDs(tasks []models.Task) []uint {
	ids := make([]uint, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids
}
