// Package flow implements the interactive configuration flows for linking
// a Roborock account and editing per-entry options.
//
// A flow is a sequence of step handlers. Each handler takes the submitted
// input for its step (nil to show the form initially) and returns a Result
// telling the front end what to do next: render a form (with field schemas,
// defaults and keyed errors), finish with a created or updated entry, or
// abort. Front ends - the bubbletea wizard and the survey-prompt commands -
// only render forms and feed submissions back; all sequencing, validation
// coercion and persistence lives here.
//
// # Config flow
//
// StepUser collects the account email, uses it as the entry's unique ID
// (aborting with AbortAlreadyConfigured when an entry exists), and asks the
// account service to email a verification code. StepCode exchanges the code
// for a session token and persists the entry. StepReauth removes an expired
// entry and restarts at the user step.
//
// # Options flow
//
// StepUser selects a platform. The camera platform edits the map transform
// options - scale, rotation and trim margins - addressed by dotted paths
// such as "map_transform.trim.left". Submitted values run through schema
// coercers (positive float, rotation in {0, 90, 180, 270}, percent 0-100);
// a valid submission is expanded into the nested options shape and replaces
// the entry's options. The vacuum platform has no editable options and
// saves immediately.
package flow
