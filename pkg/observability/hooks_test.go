package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnImportStart(ctx, 42)
	p.OnImportComplete(ctx, 3, time.Second, nil)
	p.OnLayoutStart(ctx, "vertical", 3)
	p.OnLayoutComplete(ctx, "vertical", time.Second, nil)
	p.OnCompileStart(ctx, 3)
	p.OnCompileComplete(ctx, 3, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "sequence")
	c.OnCacheSet(ctx, "generation", 1024)

	// Generation hooks
	g := NoopGenerationHooks{}
	g.OnGenerateStart(ctx, "gpt-4o-mini")
	g.OnGenerateComplete(ctx, "gpt-4o-mini", time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Generation().(NoopGenerationHooks); !ok {
		t.Error("Generation() should return NoopGenerationHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customGeneration := &testGenerationHooks{}
	SetGenerationHooks(customGeneration)
	if Generation() != customGeneration {
		t.Error("SetGenerationHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should keep the previous hooks")
	}

	SetCacheHooks(nil)
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("SetCacheHooks(nil) should keep the noop hooks")
	}
}

func TestHooksReceiveEvents(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	ctx := context.Background()
	p := &testPipelineHooks{}
	c := &testCacheHooks{}
	SetPipelineHooks(p)
	SetCacheHooks(c)

	Pipeline().OnImportStart(ctx, 10)
	Pipeline().OnCompileComplete(ctx, 4, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "layout")
	Cache().OnCacheMiss(ctx, "layout")
	Cache().OnCacheSet(ctx, "layout", 256)

	if p.importStarts != 1 {
		t.Errorf("importStarts = %d, want 1", p.importStarts)
	}
	if p.compileCompletes != 1 {
		t.Errorf("compileCompletes = %d, want 1", p.compileCompletes)
	}
	if c.hits != 1 || c.misses != 1 || c.sets != 1 {
		t.Errorf("cache events = %d/%d/%d, want 1/1/1", c.hits, c.misses, c.sets)
	}
}

type testPipelineHooks struct {
	NoopPipelineHooks
	importStarts     int
	compileCompletes int
}

func (h *testPipelineHooks) OnImportStart(context.Context, int) { h.importStarts++ }
func (h *testPipelineHooks) OnCompileComplete(context.Context, int, time.Duration, error) {
	h.compileCompletes++
}

type testCacheHooks struct {
	hits, misses, sets int
}

func (h *testCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *testCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *testCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

type testGenerationHooks struct {
	NoopGenerationHooks
}
