// Package shipment implements the delivery lifecycle of a transport document (CMR).
//
// The package includes:
//   - Shipment: the aggregate root (one per bill of lading or container)
//   - Ledger: the five ordered physical milestones and the derived current step
//   - DeliveryStatus: the delivery state machine's states
//   - ExceptionState: the parallel exception track with its append-only audit trail
//   - Apply: the pure transition function shared by every caller
//
// Delivery flow:
//
//	NotStarted ──Pickup──> InTransit ──milestones 2..4──> InTransit ──Confirmed──> Delivered ──MarkCompleted──> (completed)
//	                           │   ▲                                                   │
//	                        Report │ Resolve/Continue                                 Report
//	                           ▼   │                                                   │
//	                        Exception <────────────────────────────────────────────────┘
//	                           │
//	                         Close
//	                           ▼
//	                     ExceptionClosed (terminal)
//
// Key business rules:
//   - Milestones are filled strictly in order, never rewritten
//   - The delivery status is always derived from the ledger and the exception state
//   - No milestone may be recorded while an exception is open
//   - Exception records are only ever appended
//   - A completed or exception-closed shipment accepts no further changes
package shipment
