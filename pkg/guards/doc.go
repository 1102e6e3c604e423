// Package guards extracts in-component navigation hooks from route records
// and binds them to component instances.
//
// Leave and update hooks run against the instance already rendering the
// record. Enter hooks run before that instance exists; a hook that needs it
// passes route.Mounted to its continuation, and the callback is delivered
// through PostEnter once the view layer registers the new instance.
package guards
