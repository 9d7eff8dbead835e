package results

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ykhdr/dict-attack/internal/digest"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func sampleRun() *Run {
	alg := digest.MustParseAlgorithm(digest.SHA256)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	run := NewRun(alg.Name(), start)
	run.FinishedAt = start.Add(1500 * time.Millisecond)
	run.DictionarySize = 3
	run.TargetCount = 2
	run.HashesComputed = 3
	run.PasswordsFound = 2
	run.Results = Collect(map[string]string{"bob": "letmein", "alice": "password"}, alg)
	return run
}

func TestCollectSortsAndRecomputesHash(t *testing.T) {
	alg := digest.MustParseAlgorithm(digest.SHA256)
	got := Collect(map[string]string{"zed": "z", "alice": "password", "bob": "letmein"}, alg)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"alice", "bob", "zed"}, []string{got[0].Username, got[1].Username, got[2].Username})
	assert.Equal(t, alg.Sum("password"), got[0].Hash)
	assert.Equal(t, "letmein", got[1].Password)

	assert.Empty(t, Collect(nil, alg))
}

func TestWriteLines(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Write(buf, []Result{
		{Username: "alice", Hash: "h1", Password: "p,1"},
		{Username: "bob", Hash: "h2", Password: "p2"},
	}))
	assert.Equal(t, "alice,h1,p,1\nbob,h2,p2\n", buf.String())
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	run := sampleRun()

	require.NoError(t, NewFileSink(path).Save(context.Background(), run))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	alg := digest.MustParseAlgorithm(digest.SHA256)
	want := "alice," + alg.Sum("password") + ",password\n" +
		"bob," + alg.Sum("letmein") + ",letmein\n"
	assert.Equal(t, want, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestFileSinkEmptyRunCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, NewFileSink(path).Save(context.Background(), &Run{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileSinkMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.txt")
	assert.Error(t, NewFileSink(path).Save(context.Background(), sampleRun()))
}

type fakeInserter struct {
	docs []interface{}
	err  error
}

func (f *fakeInserter) InsertOne(_ context.Context, document interface{}, _ ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.docs = append(f.docs, document)
	return &mongo.InsertOneResult{InsertedID: document.(*Run).ID}, nil
}

func TestMongoSink(t *testing.T) {
	coll := &fakeInserter{}
	run := sampleRun()
	require.NoError(t, NewMongoSink(coll).Save(context.Background(), run))
	require.Len(t, coll.docs, 1)
	assert.Same(t, run, coll.docs[0])

	coll.err = errors.New("write concern")
	err := NewMongoSink(coll).Save(context.Background(), run)
	assert.ErrorContains(t, err, run.ID)
}

type fakePublisher struct {
	sent []*Summary
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, message *Summary) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, message)
	return nil
}

func TestAmqpSinkPublishesSummaryWithoutPasswords(t *testing.T) {
	pub := &fakePublisher{}
	run := sampleRun()
	require.NoError(t, NewAmqpSink(pub).Save(context.Background(), run))
	require.Len(t, pub.sent, 1)

	s := pub.sent[0]
	assert.Equal(t, run.ID, s.MessageID())
	assert.Equal(t, []string{"alice", "bob"}, s.Cracked)
	assert.EqualValues(t, 1500, s.ElapsedMs)
	assert.EqualValues(t, 2, s.PasswordsFound)
}

type namedSink struct {
	name  string
	err   error
	saved int
}

func (s *namedSink) Name() string { return s.name }

func (s *namedSink) Save(context.Context, *Run) error {
	s.saved++
	return s.err
}

func TestMultiSinkSavesAllAndJoinsErrors(t *testing.T) {
	a := &namedSink{name: "a"}
	b := &namedSink{name: "b", err: errors.New("b failed")}
	c := &namedSink{name: "c", err: errors.New("c failed")}

	err := MultiSink{a, b, c}.Save(context.Background(), sampleRun())
	require.Error(t, err)
	assert.ErrorContains(t, err, "b failed")
	assert.ErrorContains(t, err, "c failed")
	assert.Equal(t, 1, a.saved)
	assert.Equal(t, 1, c.saved)

	assert.NoError(t, MultiSink{}.Save(context.Background(), sampleRun()))
}
