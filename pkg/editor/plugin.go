package editor

import "fmt"

// Plugin extends an editor instance. Init runs during construction;
// Destroy runs on editor teardown in reverse init order.
type Plugin interface {
	Name() string
	Init(e *Editor) error
	Destroy() error
}

// initPlugins runs every plugin's Init. A failing or panicking plugin is
// contained: reported as plugin-error, startup continues, and the plugin
// is excluded from teardown.
func (e *Editor) initPlugins() {
	for _, p := range e.opts.Plugins {
		if err := e.initPlugin(p); err != nil {
			e.fail(KindPluginError, fmt.Errorf("editor: plugin %q init: %w", p.Name(), err), true)
			continue
		}
		e.plugins = append(e.plugins, p)
	}
}

func (e *Editor) initPlugin(p Plugin) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Init(e)
}

func (e *Editor) destroyPlugins() {
	for i := len(e.plugins) - 1; i >= 0; i-- {
		p := e.plugins[i]
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.fail(KindPluginError, fmt.Errorf("editor: plugin %q destroy panic: %v", p.Name(), r), true)
				}
			}()
			if err := p.Destroy(); err != nil {
				e.fail(KindPluginError, fmt.Errorf("editor: plugin %q destroy: %w", p.Name(), err), true)
			}
		}()
	}
	e.plugins = nil
}
