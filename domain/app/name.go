package app

// Name is the application's identifier, used in CLI banners and the
// STUN binding request's SOFTWARE attribute.
const Name = "p2pvoice"
