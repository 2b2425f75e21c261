// Package mocks provides centralized mock implementations for testing.
//
// This package contains mock implementations of interfaces used throughout the application,
// facilitating consistent and DRY testing across the codebase. Instead of defining
// inline mocks in individual test files, these standardized mock implementations
// can be reused.
//
// Key Features:
//
//   - Consistent mock behavior across different test packages
//   - Simplified test setup with reusable mock implementations
//   - Reduced duplication of mock logic across test files
//   - Easy maintenance of mock behaviors in a central location
//
// Usage:
//
// Import the mocks package in your test file and create the required mock:
//
//	import "github.com/phrazzld/agora-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    users := &mocks.MockUserStore{
//	        Base: memory.New().Users(),
//	        GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
//	            return nil, errors.New("connection reset")
//	        },
//	    }
//
//	    // Use the mock in your test...
//	}
//
// Store mocks delegate every method without a function field to Base, so a
// test can inject one failure into an otherwise working store.
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Document any helper methods or special functionality
//  4. Update existing tests to use the centralized mock implementation
package mocks
