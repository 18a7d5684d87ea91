// Package calendar exports upcoming games as an iCalendar (.ics) feed.
package calendar
