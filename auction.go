// This package is a pure golang implementation of the auction service wire protocol
package auction
