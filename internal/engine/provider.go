package engine

import "context"

// Provider hands out the engine to use for one job. store.Loader implements it with
// periodic reloads.
type Provider interface {
	Engine(ctx context.Context) (*Engine, error)
}

type staticProvider struct {
	engine *Engine
}

// Static returns a Provider that always hands out e.
func Static(e *Engine) Provider {
	return staticProvider{engine: e}
}

func (p staticProvider) Engine(context.Context) (*Engine, error) {
	return p.engine, nil
}
