// Package editor is the orchestrator tying the engine together: it owns
// configuration and mode, delegates the live tree to a node.Model,
// coordinates format detection, parsing, and serialization through
// format handlers, performs validated CRUD, batches bulk operations,
// and defines the public event contract.
//
// Data flows one way: text enters through LoadContent, a format handler
// parses it into a node tree held by the model, the renderer (consulting
// expansion state) produces visual elements, and user interaction comes
// back in as operations that mutate the model and re-render or
// serialize back to text.
package editor
