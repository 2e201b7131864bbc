//go:build darwin

package appnap

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Foundation
#include <stdlib.h>
#import <Foundation/Foundation.h>

// Returns a retained activity token, or NULL.
static void *DMN_BeginActivity(const char *reasonCStr) {
    @autoreleasepool {
        NSString *reason = [NSString stringWithUTF8String:reasonCStr];
        if (!reason) {
            return NULL;
        }
        // Deliberately no sudden or automatic termination flags, SIGTERM
        // must still be able to end the process.
        NSActivityOptions options = NSActivityUserInitiatedAllowingIdleSystemSleep |
                                    NSActivityLatencyCritical;
        id<NSObject> token = [[NSProcessInfo processInfo] beginActivityWithOptions:options
                                                                            reason:reason];
        return (void *)[token retain];
    }
}

static void DMN_EndActivity(void *token) {
    @autoreleasepool {
        [[NSProcessInfo processInfo] endActivity:(id<NSObject>)token];
        [(id)token release];
    }
}
*/
import "C"
import (
	"errors"
	"unsafe"
)

func beginActivity(reason string) (end func(), err error) {
	cReason := C.CString(reason)
	defer C.free(unsafe.Pointer(cReason))

	token := C.DMN_BeginActivity(cReason)
	if token == nil {
		return nil, errors.New("beginning activity: no token returned")
	}
	return func() { C.DMN_EndActivity(token) }, nil
}
