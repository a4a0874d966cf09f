package traversal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	apperrors "github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/traverser"
)

func TestStart_InjectAndCollect(t *testing.T) {
	tr := New(WithID("t-1"))
	tr.AddStep(NewStart())
	if err := Inject(tr, 1, 2, 3); err != nil {
		t.Fatal(err)
	}

	got, err := Values[int](context.Background(), tr)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestInject_Attribution(t *testing.T) {
	tr := New(WithID("t-1"))
	start := NewStart()
	tr.AddStep(start)
	_ = Inject(tr, "a")

	out, err := Pull(context.Background(), tr.EndStep())
	if err != nil {
		t.Fatal(err)
	}
	if out.StepID() != start.ID() {
		t.Errorf("expected step %q, got %q", start.ID(), out.StepID())
	}
	if out.Origin() != "t-1" {
		t.Errorf("expected origin t-1, got %q", out.Origin())
	}
}

func TestInject_EmptyTraversal(t *testing.T) {
	err := Inject(New(), 1)
	if !apperrors.HasCode(err, apperrors.ErrCodeMisconfigured) {
		t.Errorf("expected MISCONFIGURED, got %v", err)
	}
	if err := New().AddStarts(); !apperrors.HasCode(err, apperrors.ErrCodeMisconfigured) {
		t.Errorf("expected MISCONFIGURED, got %v", err)
	}
}

func TestMap(t *testing.T) {
	tr := New(WithTrackPaths())
	tr.AddStep(NewStart()).
		AddStep(NewMap(func(_ context.Context, n int) (string, error) {
			return strconv.Itoa(n * 2), nil
		}))
	_ = Inject(tr, 1, 2, 3)

	ts, err := Collect(context.Background(), tr)
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 3 {
		t.Fatalf("expected 3 traversers, got %d", len(ts))
	}
	if ts[2].Value() != "6" {
		t.Errorf("expected \"6\", got %v", ts[2].Value())
	}
	path := ts[2].Path()
	if len(path) != 2 || path[0] != 3 || path[1] != "6" {
		t.Errorf("expected path [3 6], got %v", path)
	}
}

func TestMap_Error(t *testing.T) {
	tr := New()
	tr.AddStep(NewStart()).
		AddStep(NewMap(func(_ context.Context, n int) (int, error) {
			if n == 2 {
				return 0, errors.New("bad value")
			}
			return n, nil
		}))
	_ = Inject(tr, 1, 2, 3)

	got, err := Values[int](context.Background(), tr)
	if err == nil {
		t.Fatal("expected error")
	}
	if got != nil {
		t.Errorf("expected no values on error, got %v", got)
	}
}

func TestMap_WrongType(t *testing.T) {
	tr := New()
	tr.AddStep(NewStart()).
		AddStep(NewMap(func(_ context.Context, n int) (int, error) { return n, nil }))
	_ = Inject(tr, "not a number")

	_, err := Collect(context.Background(), tr)
	if !apperrors.HasCode(err, apperrors.ErrCodeMisconfigured) {
		t.Errorf("expected MISCONFIGURED, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	tr := New()
	tr.AddStep(NewStart()).
		AddStep(NewFilter(func(n int) bool { return n%2 == 0 }))
	_ = Inject(tr, 1, 2, 3, 4, 5, 6)

	got, err := Values[int](context.Background(), tr)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{2, 4, 6}) {
		t.Errorf("got %v, want [2 4 6]", got)
	}
}

func TestSideEffect(t *testing.T) {
	var seen []int
	tr := New()
	tr.AddStep(NewStart()).
		AddStep(NewSideEffect(func(_ context.Context, n int) error {
			seen = append(seen, n)
			return nil
		}))
	_ = Inject(tr, 1, 2)

	if err := Iterate(context.Background(), tr); err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(seen, []int{1, 2}) {
		t.Errorf("got %v, want [1 2]", seen)
	}
}

func TestSideEffect_Error(t *testing.T) {
	tr := New()
	tr.AddStep(NewStart()).
		AddStep(NewSideEffect(func(_ context.Context, _ int) error {
			return fmt.Errorf("publish failed")
		}))
	_ = Inject(tr, 1)

	if err := Iterate(context.Background(), tr); err == nil {
		t.Fatal("expected error")
	}
}

func TestPull_Exhausted(t *testing.T) {
	s := NewStart()
	s.SetPrevious(FromValues(traverser.Generator{}, "src", 1))
	ctx := context.Background()

	if _, err := Pull(ctx, s); err != nil {
		t.Fatal(err)
	}
	_, err := Pull(ctx, s)
	if !apperrors.IsExhausted(err) {
		t.Fatalf("expected EXHAUSTED, got %v", err)
	}
	if _, err := Pull(ctx, s); !apperrors.IsExhausted(err) {
		t.Errorf("exhaustion should be idempotent, got %v", err)
	}
}

func TestStarts_InjectedBeforePrevious(t *testing.T) {
	s := NewStart()
	g := traverser.Generator{}
	s.SetPrevious(FromValues(g, "src", "upstream"))
	s.AddStarts(traverser.Generate(g, "injected", "src", 1))

	got, err := collectStep(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "injected" || got[1] != "upstream" {
		t.Errorf("got %v", got)
	}
}

func TestStarts_HasNextBuffers(t *testing.T) {
	s := NewStart()
	s.SetPrevious(FromValues(traverser.Generator{}, "src", 1, 2))
	ctx := context.Background()
	starts := s.Starts()

	for range 3 {
		ok, err := starts.HasNext(ctx)
		if err != nil || !ok {
			t.Fatalf("HasNext = %v, %v", ok, err)
		}
	}
	first, err := starts.Next(ctx)
	if err != nil || first.Value() != 1 {
		t.Fatalf("expected buffered 1, got %v, %v", first, err)
	}
	second, err := starts.Next(ctx)
	if err != nil || second.Value() != 2 {
		t.Fatalf("expected 2, got %v, %v", second, err)
	}
	if ok, _ := starts.HasNext(ctx); ok {
		t.Error("expected no more traversers")
	}
	if _, err := starts.Next(ctx); !apperrors.IsExhausted(err) {
		t.Errorf("expected EXHAUSTED, got %v", err)
	}
}

func TestStarts_ResetKeepsWiring(t *testing.T) {
	s := NewStart()
	g := traverser.Generator{}
	s.SetPrevious(FromValues(g, "src", "upstream"))
	s.AddStarts(traverser.Generate(g, "injected", "src", 1))

	s.Reset()

	got, err := collectStep(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "upstream" {
		t.Errorf("expected only upstream after reset, got %v", got)
	}
}

func TestTraversal_StartEndSteps(t *testing.T) {
	tr := New()
	if tr.StartStep() != nil || tr.EndStep() != nil {
		t.Error("empty traversal has no steps")
	}
	if _, ok, err := tr.Next(context.Background()); ok || err != nil {
		t.Errorf("empty traversal should be exhausted, got %v %v", ok, err)
	}

	start := NewStart()
	filter := NewFilter(func(int) bool { return true })
	tr.AddStep(start).AddStep(filter)

	if tr.StartStep() != start || tr.EndStep() != filter {
		t.Error("unexpected start/end steps")
	}
	if filter.Traversal() != tr {
		t.Error("AddStep should set ownership")
	}
	if len(tr.Steps()) != 2 {
		t.Errorf("expected 2 steps, got %d", len(tr.Steps()))
	}
}

func TestTraversal_RootAndChild(t *testing.T) {
	root := New(WithID("root"), WithTrackPaths())
	child := NewChild(root, WithID("child"))
	grandchild := NewChild(child)

	if !root.IsRoot() || child.IsRoot() {
		t.Error("unexpected IsRoot")
	}
	if grandchild.Root() != root {
		t.Error("expected Root to walk to the top")
	}
	if grandchild.Parent() != child {
		t.Error("unexpected parent")
	}
	if !child.Generator().TrackPaths {
		t.Error("child should inherit path tracking")
	}
	if child.Generator().TraversalID != "child" {
		t.Errorf("child generator should use its own id, got %q", child.Generator().TraversalID)
	}
}

func TestTraversal_ResetRerun(t *testing.T) {
	tr := New()
	tr.AddStep(NewStart()).AddStep(NewMap(func(_ context.Context, n int) (int, error) { return n + 1, nil }))
	ctx := context.Background()

	_ = Inject(tr, 1, 2)
	first, err := Values[int](ctx, tr)
	if err != nil {
		t.Fatal(err)
	}

	tr.Reset()
	_ = Inject(tr, 1, 2)
	second, err := Values[int](ctx, tr)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(first, second) {
		t.Errorf("rerun mismatch: %v vs %v", first, second)
	}
}

func TestTraversal_Clone(t *testing.T) {
	tr := New(WithID("t-1"))
	tr.AddStep(NewStart()).AddStep(NewFilter(func(n int) bool { return n > 1 }))
	_ = Inject(tr, 1, 2, 3)

	c := tr.Clone()
	if c.ID() != tr.ID() {
		t.Error("clone keeps the traversal id")
	}
	for i, s := range c.Steps() {
		if s == tr.Steps()[i] {
			t.Errorf("step %d was not cloned", i)
		}
		if s.ID() != tr.Steps()[i].ID() {
			t.Errorf("step %d id changed", i)
		}
		if s.Traversal() != c {
			t.Errorf("step %d not owned by clone", i)
		}
	}

	// The clone starts empty; the original keeps its injected starts.
	cloned, _ := Values[int](context.Background(), c)
	if len(cloned) != 0 {
		t.Errorf("expected empty clone, got %v", cloned)
	}
	_ = Inject(c, 5)
	cloned, _ = Values[int](context.Background(), c)
	if !intSliceEqual(cloned, []int{5}) {
		t.Errorf("expected [5] from clone, got %v", cloned)
	}

	orig, _ := Values[int](context.Background(), tr)
	if !intSliceEqual(orig, []int{2, 3}) {
		t.Errorf("expected [2 3] from original, got %v", orig)
	}
}

type badStep struct {
	*StartStep
}

func (badStep) Validate() error { return apperrors.Misconfigured("bad", "no seed") }

func TestTraversal_Validate(t *testing.T) {
	tr := New()
	tr.AddStep(NewStart())
	if err := tr.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr.AddStep(badStep{NewStart()})
	err := tr.Validate()
	if !apperrors.HasCode(err, apperrors.ErrCodeMisconfigured) {
		t.Errorf("expected MISCONFIGURED, got %v", err)
	}
}

func TestTraversal_AsUpstream(t *testing.T) {
	inner := New()
	inner.AddStep(NewStart())
	_ = Inject(inner, 1, 2)

	outer := New()
	start := NewStart()
	start.SetPrevious(inner)
	outer.AddStep(start)

	got, err := Values[int](context.Background(), outer)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 2}) {
		t.Errorf("got %v", got)
	}
	if err := outer.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestFromSlice(t *testing.T) {
	it := FromSlice([]string{"a", "b"})
	ctx := context.Background()
	var got []string
	for {
		v, ok, err := it.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v", got)
	}
	if err := it.Close(); err != nil {
		t.Error(err)
	}
}

// --- helpers ---

func collectStep(ctx context.Context, s Step) ([]any, error) {
	var out []any
	for {
		tr, ok, err := s.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, tr.Value())
	}
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
