package master

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// net/rpc's Client.Close races the background input loop's exit;
		// it always winds down, but not synchronously with Close returning.
		goleak.IgnoreTopFunction("net/rpc.(*Client).input"),
	)
}
