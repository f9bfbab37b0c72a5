package repository

var NeighborFromData = neighborFromData
