package utils

// Contains checks if a slice contains a specific element.
func Contains[T comparable](slice []T, element T) bool {
	return IndexOf(slice, element) >= 0
}

// IndexFunc returns the index of the first element matching match, or -1.
func IndexFunc[T any](slice []T, match func(T) bool) int {
	for i, item := range slice {
		if match(item) {
			return i
		}
	}
	return -1
}

// IndexOf returns the index of the first occurrence of element, or -1.
func IndexOf[T comparable](slice []T, element T) int {
	return IndexFunc(slice, func(item T) bool { return item == element })
}

// RemoveAt returns slice without the element at index i. Order is preserved.
func RemoveAt[T any](slice []T, i int) []T {
	out := make([]T, 0, len(slice)-1)
	out = append(out, slice[:i]...)
	return append(out, slice[i+1:]...)
}
