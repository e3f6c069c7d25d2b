// Package dirty guards navigation away from editors with unsaved changes.
//
// A [Coordinator] belongs to one resource host (a window or dialog showing
// exactly one editable [Resource] at a time). Before the host replaces or
// closes its resource it calls [Coordinator.RequestSwitch]. If the active
// resource has unsaved edits the coordinator asks a [Prompter] whether to
// save, discard, or stay, and reports the outcome as a [Decision].
//
// Dirtiness is never pushed to the coordinator: it polls IsDirty at each
// decision point. Resources that implement [ReadOnly] and report true are
// always treated as clean.
//
// Only one prompt may be outstanding per coordinator. A request made while
// a prompt is waiting for an answer is denied with errors.ErrPromptPending.
//
// A Coordinator is not safe for concurrent use. It, the resources and the
// Prompter are driven from the UI goroutine only.
package dirty
