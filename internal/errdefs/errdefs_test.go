package errdefs

import (
	"errors"
	"fmt"
	"testing"
)

func TestCollapseLogin_Nil(t *testing.T) {
	if got := CollapseLogin(nil); got != nil {
		t.Fatalf("CollapseLogin(nil) = %v, want nil", got)
	}
}

func TestCollapseLogin_EmptyPasswordPassesThrough(t *testing.T) {
	if got := CollapseLogin(ErrEmptyPassword); got != ErrEmptyPassword {
		t.Fatalf("CollapseLogin = %v, want ErrEmptyPassword", got)
	}
}

func TestCollapseLogin_BareInvalidAuthenticationPassesThrough(t *testing.T) {
	if got := CollapseLogin(ErrInvalidAuthentication); got != ErrInvalidAuthentication {
		t.Fatalf("CollapseLogin = %v, want ErrInvalidAuthentication", got)
	}
}

func TestCollapseLogin_WrappedInvalidAuthenticationEscalates(t *testing.T) {
	wrapped := fmt.Errorf("verify second factor: %w", ErrInvalidAuthentication)
	if got := CollapseLogin(wrapped); got != ErrInternalServer {
		t.Fatalf("CollapseLogin(wrapped invalid auth) = %v, want ErrInternalServer", got)
	}
}

func TestCollapseLogin_UnexpectedErrorCollapses(t *testing.T) {
	storeFault := errors.New("pq: connection reset by peer")
	if got := CollapseLogin(storeFault); got != ErrInvalidAuthentication {
		t.Fatalf("CollapseLogin(store fault) = %v, want ErrInvalidAuthentication", got)
	}
}

func TestCollapseLogin_InternalServerPassesThrough(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", ErrInternalServer)
	if got := CollapseLogin(wrapped); got != ErrInternalServer {
		t.Fatalf("CollapseLogin = %v, want ErrInternalServer", got)
	}
}
