package scrape

import (
	"fmt"
	"os"

	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"
	"github.com/scrapex/scrapex/pkg/models"
)

// Filter runs a user-supplied JavaScript predicate over extracted posts.
// The script must define keep(post) returning a truthy value for posts to
// collect. Posts are presented with their JSON field names.
//
// The loop is single-threaded, so one runtime is enough.
type Filter struct {
	vm   *goja.Runtime
	keep goja.Callable
}

// NewFilter compiles the predicate source and resolves keep().
func NewFilter(src string) (*Filter, error) {
	vm := goja.New()

	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		args := make([]interface{}, len(call.Arguments))
		for i, a := range call.Arguments {
			args[i] = a.Export()
		}
		log.Info().Interface("args", args).Msg("filter script")
		return goja.Undefined()
	})
	_ = vm.Set("console", console)

	if _, err := vm.RunString(src); err != nil {
		return nil, fmt.Errorf("filter script failed to run: %w", err)
	}

	keep, ok := goja.AssertFunction(vm.Get("keep"))
	if !ok {
		return nil, fmt.Errorf("filter script must define keep(post)")
	}
	return &Filter{vm: vm, keep: keep}, nil
}

// NewFilterFromFile loads and compiles the predicate from a file.
func NewFilterFromFile(path string) (*Filter, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter script: %w", err)
	}
	return NewFilter(string(src))
}

// Keep reports whether the post passes the predicate. A script error is
// logged and the post is kept; filtering is advisory, never lossy by
// accident.
func (f *Filter) Keep(post *models.Post) bool {
	arg := f.vm.ToValue(map[string]interface{}{
		"timestamp":   post.Timestamp,
		"author_name": post.AuthorName,
		"body_text":   post.BodyText,
		"stats":       post.Stats,
		"engagements": post.Engagements,
	})
	v, err := f.keep(goja.Undefined(), arg)
	if err != nil {
		log.Warn().Err(err).Msg("Filter script error, keeping post")
		return true
	}
	return v.ToBoolean()
}
