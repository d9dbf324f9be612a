// Package models defines the domain records exchanged with the event booking
// backend: users and their roles, events, bookings and paginated listings.
package models
